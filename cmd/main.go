package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gousers/config"
	_ "gousers/docs"
	"gousers/internal/api/router"
	"gousers/internal/api/user"
	"gousers/internal/pkg/cache"
	"gousers/internal/pkg/database"
	"gousers/internal/pkg/hasher"
	"gousers/internal/pkg/logger"
	"gousers/internal/pkg/middleware"
	"gousers/internal/pkg/token"
	"gousers/internal/pkg/validation"
	"gousers/internal/repository/userrepo"
	"gousers/internal/service/authservice"
	"gousers/internal/service/userservice"
)

// @title GoUsers API
// @version 1.0
// @description Serviço de gestão de contas de usuário: cadastro, consulta, atualização, troca de senha e login.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 0. Variáveis de ambiente (.env é opcional; em Docker elas vêm do ambiente)
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado. Usando apenas o ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Erro de configuração: %v", err)
	}
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	appLogger.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 2. Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	db, err := database.NewPostgresDB(startCtx, cfg.DatabaseURL, database.DefaultPool())
	if err != nil {
		appLogger.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLogger.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis), opcional
	var cacheClient cache.Client = cache.NopClient{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(startCtx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			appLogger.Warn("Redis indisponível no início; o cache seguirá tentando a cada operação.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		}
		cacheClient = redisClient
	}
	defer cacheClient.Close()

	// 3. Injeção de Dependências
	// Ordem: Repository -> Service -> Handler
	userRepo := userrepo.NewUserRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLogger)
	passwordHasher := hasher.NewBcryptHasher(cfg.BcryptCost)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	validator := validation.New()

	userSvc := userservice.NewService(userRepo, passwordHasher, validator, appLogger)
	authSvc := authservice.NewService(userRepo, passwordHasher, tokenSvc, appLogger)
	userHandler := user.NewHandler(userSvc, authSvc, validator, appLogger)
	appLogger.Debug("Serviços e handlers inicializados.", nil)

	// 4. Roteador/Servidor
	r := router.NewRouter(userHandler, middleware.NewAuthMiddleware(tokenSvc))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLogger.Info("Servidor GoUsers ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLogger.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Desligamento do servidor forçado.", err)
	}

	appLogger.Info("Servidor encerrado com sucesso.", nil)
}
