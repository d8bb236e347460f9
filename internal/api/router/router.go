package router

import (
	_ "embed"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"goloja/internal/api/address"
	"goloja/internal/api/auth"
	"goloja/internal/api/cart"
	"goloja/internal/api/catalog"
	"goloja/internal/api/checkout"
	"goloja/internal/api/content"
	"goloja/internal/api/order"
	"goloja/internal/domain"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/middleware"
)

//go:embed swagger.json
var swaggerDoc []byte

// Handlers agrupa todos os handlers já inicializados por injeção de
// dependências, um por entidade.
type Handlers struct {
	Cart     *cart.Handler
	Address  *address.Handler
	Order    *order.Handler
	Catalog  *catalog.Handler
	Content  *content.Handler
	Checkout *checkout.Handler
	Auth     *auth.Handler
}

// NewRouter configura e retorna o roteador HTTP principal. As rotas de
// escrita do catálogo exigem o JWT de sessão com papel de administrador; o
// restante é público (a autenticação upstream vive na camada de serviço).
func NewRouter(h Handlers, tokenSvc middleware.TokenService, store kvstore.Client, rateLimit int, rateWindow time.Duration) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /ping", PingHandler)

	// Carrinho
	mux.HandleFunc("GET /v1/cart", h.Cart.GetCartHandler)
	mux.HandleFunc("DELETE /v1/cart", h.Cart.ClearCartHandler)
	mux.HandleFunc("GET /v1/cart/summary", h.Cart.SummaryHandler)
	mux.HandleFunc("POST /v1/cart/items", h.Cart.AddItemHandler)
	mux.HandleFunc("PUT /v1/cart/items/{id}", h.Cart.UpdateItemHandler)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.Cart.RemoveItemHandler)
	mux.HandleFunc("POST /v1/cart/items/{id}/increment", h.Cart.IncrementHandler)
	mux.HandleFunc("POST /v1/cart/items/{id}/decrement", h.Cart.DecrementHandler)

	// Endereço e frete
	mux.HandleFunc("GET /v1/address", h.Address.GetAddressHandler)
	mux.HandleFunc("PUT /v1/address", h.Address.SaveAddressHandler)
	mux.HandleFunc("DELETE /v1/address", h.Address.RemoveAddressHandler)
	mux.HandleFunc("POST /v1/shipping/quote", h.Address.QuoteShippingHandler)

	// Autenticação upstream (usuário e senha da API de pedidos)
	mux.HandleFunc("POST /v1/auth/login", h.Order.LoginHandler)
	mux.HandleFunc("POST /v1/auth/logout", h.Order.LogoutHandler)
	mux.HandleFunc("GET /v1/auth/status", h.Order.StatusHandler)

	// Login com Google e sessão local
	mux.HandleFunc("POST /v1/auth/google", h.Auth.GoogleLoginHandler)
	mux.HandleFunc("POST /v1/auth/google/logout", h.Auth.GoogleLogoutHandler)
	mux.HandleFunc("GET /v1/auth/me", h.Auth.MeHandler)

	// Pedidos
	mux.HandleFunc("GET /v1/orders", h.Order.ListOrdersHandler)
	mux.HandleFunc("GET /v1/orders/{id}", h.Order.GetOrderHandler)
	mux.HandleFunc("PATCH /v1/orders/{id}/status", h.Order.UpdateStatusHandler)

	// Catálogo: leitura pública
	mux.HandleFunc("GET /v1/products", h.Catalog.ListProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.Catalog.GetProductHandler)
	mux.HandleFunc("GET /v1/categories", h.Catalog.ListCategoriesHandler)

	// Catálogo: escrita restrita a administradores (JWT de sessão + role)
	authMw := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)
	mux.HandleFunc("POST /v1/products", authMw(adminOnly(h.Catalog.CreateProductHandler)))
	mux.HandleFunc("PUT /v1/products/{id}", authMw(adminOnly(h.Catalog.UpdateProductHandler)))
	mux.HandleFunc("DELETE /v1/products/{id}", authMw(adminOnly(h.Catalog.DeleteProductHandler)))

	// Conteúdo institucional
	mux.HandleFunc("GET /v1/content/contact", h.Content.GetContactHandler)
	mux.HandleFunc("GET /v1/content/socials", h.Content.GetSocialsHandler)
	mux.HandleFunc("GET /v1/content/testimonials", h.Content.ListTestimonialsHandler)
	mux.HandleFunc("GET /v1/content/testimonials/{id}", h.Content.GetTestimonialHandler)

	// Checkout
	mux.HandleFunc("POST /v1/checkout", h.Checkout.CheckoutHandler)
	mux.HandleFunc("GET /v1/checkout/draft", h.Checkout.GetDraftHandler)
	mux.HandleFunc("DELETE /v1/checkout/draft", h.Checkout.AbandonDraftHandler)
	mux.HandleFunc("GET /v1/checkout/attempts", authMw(h.Checkout.ListAttemptsHandler))

	// Documentação da API
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerDoc)
	})
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Limitador de requisições por IP envolve todas as rotas.
	return middleware.RateLimiter(store, rateLimit, rateWindow)(mux)
}

// PingHandler é o health check da aplicação.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
