package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"goloja/config"
	"goloja/internal/pkg/apiclient"
	"goloja/internal/pkg/database"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/mercadopago"
	"goloja/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"goloja/internal/api/address"
	"goloja/internal/api/auth"
	"goloja/internal/api/cart"
	"goloja/internal/api/catalog"
	"goloja/internal/api/checkout"
	"goloja/internal/api/content"
	"goloja/internal/api/order"
	"goloja/internal/api/router"
	"goloja/internal/repository/addressrepo"
	"goloja/internal/repository/cartrepo"
	"goloja/internal/repository/checkoutrepo"
	"goloja/internal/repository/sessionrepo"
	"goloja/internal/service/addressservice"
	"goloja/internal/service/cartservice"
	"goloja/internal/service/catalogservice"
	"goloja/internal/service/checkoutservice"
	"goloja/internal/service/contentservice"
	"goloja/internal/service/googleauth"
	"goloja/internal/service/orderservice"
)

func main() {
	stdlog.Println("⚡ Inicializando serviço GoLoja...")

	// 0. Variáveis de ambiente (.env). Se o arquivo não existir, as variáveis
	// essenciais podem estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 1. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL): auditoria de checkout
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Armazenamento chave-valor (Redis): carrinho, endereço, sessões e caches
	store := kvstore.NewRedisClient(cfg.RedisAddr)
	if !store.Probe(context.Background()) {
		log.Warn("Armazenamento chave-valor indisponível na partida. Os serviços degradam para listas vazias.", nil)
	}
	log.Info("Cliente Redis inicializado.", nil)

	// 2. INJEÇÃO DE DEPENDÊNCIAS (Repository -> Service -> Handler)

	// A. Repositórios
	cartRepo := cartrepo.NewCartRepository(store, log)
	addressRepo := addressrepo.NewAddressRepository(store, log)
	sessionRepo := sessionrepo.NewSessionRepository(store, log)
	checkoutRepo := checkoutrepo.NewCheckoutRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Clientes externos
	api := apiclient.New(cfg.APIBaseURL, cfg.APIAuthURL, cfg.APITimeout, sessionRepo, log)
	mpClient := mercadopago.NewClient(cfg.MPBaseURL, cfg.MPAccessToken, cfg.MPApplicationID, cfg.MPTimeout, log)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Clientes externos inicializados.", nil)

	// C. Serviços
	cartSvc := cartservice.NewService(cartRepo, log)
	addressSvc := addressservice.NewService(addressRepo, log)
	orderSvc := orderservice.NewService(api, sessionRepo, log)
	catalogSvc := catalogservice.NewService(api, store, log)
	contentSvc := contentservice.NewService(api, store, log)
	googleSvc := googleauth.NewService(store, tokenSvc, cfg.AdminEmails, cfg.GoogleTimeout, log)
	checkoutSvc := checkoutservice.NewService(cartSvc, addressSvc, orderSvc, mpClient, store, checkoutRepo, cfg.FrontendOrigin, log)
	log.Debug("Serviços inicializados.", nil)

	// D. Handlers
	handlers := router.Handlers{
		Cart:     cart.NewHandler(cartSvc, log),
		Address:  address.NewHandler(addressSvc, log),
		Order:    order.NewHandler(orderSvc, log),
		Catalog:  catalog.NewHandler(catalogSvc, log),
		Content:  content.NewHandler(contentSvc, log),
		Checkout: checkout.NewHandler(checkoutSvc, googleSvc, log),
		Auth:     auth.NewHandler(googleSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 3. Roteador e Servidor
	r := router.NewRouter(handlers, tokenSvc, store, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoLoja ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
