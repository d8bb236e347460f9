package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config armazena todas as configurações do aplicativo GoLoja.
// Credenciais (Mercado Pago, JWT, banco) vêm exclusivamente do ambiente,
// nunca do código.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// API upstream (pedidos, catálogo, conteúdo)
	APIBaseURL string
	APIAuthURL string
	APITimeout time.Duration

	// Banco de Dados (PostgreSQL): auditoria de checkout
	DatabaseURL string
	DBTimeout   time.Duration

	// Armazenamento chave-valor (Redis)
	RedisAddr string

	// Segurança (JWT de sessão local)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Mercado Pago
	MPBaseURL       string
	MPAccessToken   string
	MPApplicationID string
	MPTimeout       time.Duration

	// Login com Google
	GoogleTimeout time.Duration
	AdminEmails   []string

	// Storefront (origem das back_urls pós-pagamento)
	FrontendOrigin string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. API upstream
		APIBaseURL: mustGetEnv("API_BASE_URL"),
		APIAuthURL: getEnv("API_AUTH_URL", ""),
		APITimeout: getDurationEnv("API_TIMEOUT_SEC", 15) * time.Second,

		// 3. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 4. Armazenamento chave-valor (Redis)
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// 5. Segurança (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 6. Mercado Pago
		MPBaseURL:       getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
		MPAccessToken:   mustGetEnv("MP_ACCESS_TOKEN"),
		MPApplicationID: getEnv("MP_APPLICATION_ID", ""),
		MPTimeout:       getDurationEnv("MP_TIMEOUT_SEC", 15) * time.Second,

		// 7. Login com Google
		GoogleTimeout: getDurationEnv("GOOGLE_TIMEOUT_SEC", 10) * time.Second,
		AdminEmails:   getListEnv("ADMIN_EMAILS"),

		// 8. Storefront
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),

		// 9. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
	}

	// Sem raiz de autenticação própria, os endpoints /token/ vivem na mesma
	// raiz da API de recursos.
	if cfg.APIAuthURL == "" {
		cfg.APIAuthURL = cfg.APIBaseURL
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getListEnv lê uma lista separada por vírgulas.
func getListEnv(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
