package kvstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client define o contrato de interface do armazenamento chave-valor usado
// por toda a aplicação (carrinho, endereço, sessão, caches de catálogo).
// Toda operação é falível: o armazenamento pode estar indisponível ou cheio,
// e os consumidores devem degradar para "sem dados" em vez de propagar a
// falha de infraestrutura até a UI.
type Client interface {
	Probe(ctx context.Context) bool
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error

	// Usados pelo rate limiter.
	GetInt(ctx context.Context, key string) (int, error)
	Incr(ctx context.Context, key string) error
}

// ErrNotFound é retornado quando a chave não existe no armazenamento.
var ErrNotFound = redis.Nil

// RedisClient é a implementação concreta da interface Client, usando Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria e retorna uma nova instância do cliente Redis.
// Esta função é chamada no main.go.
func NewRedisClient(addr string) Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, // Endereço do Redis (e.g., "localhost:6379")
	})

	return &RedisClient{rdb: rdb}
}

// Probe verifica a disponibilidade do armazenamento com um round trip
// completo de escrita e remoção, não apenas um PING: alguns modos de falha
// (memória cheia, instância somente-leitura) aceitam leituras mas recusam
// escritas.
func (c *RedisClient) Probe(ctx context.Context) bool {
	const probeKey = "goloja:probe"

	if err := c.rdb.Set(ctx, probeKey, "1", time.Minute).Err(); err != nil {
		return false
	}
	if err := c.rdb.Del(ctx, probeKey).Err(); err != nil {
		return false
	}
	return true
}

// Get recupera o valor associado a uma chave.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()

	// Se a chave não existir no Redis, retornamos o erro exportado (redis.Nil)
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set define um valor para uma chave com um tempo de expiração.
// expiration 0 significa sem expiração.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete remove uma chave do armazenamento.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	// Comando DEL, retorna o número de chaves deletadas (0 se não existir)
	return c.rdb.Del(ctx, key).Err()
}

// GetInt recupera um valor inteiro (contador) associado a uma chave.
func (c *RedisClient) GetInt(ctx context.Context, key string) (int, error) {
	val, err := c.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// Incr incrementa o contador associado a uma chave.
func (c *RedisClient) Incr(ctx context.Context, key string) error {
	return c.rdb.Incr(ctx, key).Err()
}
