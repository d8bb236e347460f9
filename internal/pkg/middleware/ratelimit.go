package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"goloja/internal/pkg/kvstore"
)

// RateLimiter limita requisições por IP usando contadores no armazenamento
// chave-valor. Se o armazenamento estiver indisponível, a requisição passa:
// o limitador degrada, nunca derruba o tráfego.
func RateLimiter(client kvstore.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.GetInt(ctx, key)
			if err == kvstore.ErrNotFound {
				client.Set(ctx, key, 1, duration)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				// Armazenamento indisponível: deixa passar
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			client.Incr(ctx, key)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
