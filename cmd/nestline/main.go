package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nestline/nestline/pkg/config"
	handlers "github.com/nestline/nestline/pkg/handlers/http"
	wshandlers "github.com/nestline/nestline/pkg/handlers/websocket"
	"github.com/nestline/nestline/pkg/infra/broadcast"
	infraLogger "github.com/nestline/nestline/pkg/infra/logger"
	"github.com/nestline/nestline/pkg/infra/prometheus"
	"github.com/nestline/nestline/pkg/infra/storage"
	"github.com/nestline/nestline/pkg/middleware"
	"github.com/nestline/nestline/pkg/ratelimit"
	"github.com/nestline/nestline/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Warnf("config file not loaded: %v", err)
	}
	cfg := config.GetConfig()

	prometheus.Initialize()

	repo, err := storage.NewRedisRepository(storage.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}

	ledger := ratelimit.NewLedger(ratelimit.Config{
		Window:            cfg.RateLimit.Window(),
		SoftThreshold:     cfg.RateLimit.SoftThreshold,
		AbuseThreshold:    cfg.RateLimit.AbuseThreshold,
		BlacklistDuration: cfg.RateLimit.BlacklistDuration(),
	}, nil)
	idleAfter := time.Duration(cfg.RateLimit.SweepIdleFactor) * cfg.RateLimit.Window()
	ledger.StartSweeper(cfg.RateLimit.SweepInterval(), idleAfter)

	hub := broadcast.NewHub(logger)

	middlewareTransport := middleware.Transport{
		RateLimitMiddleware:    middleware.NewRateLimitMiddleware(logger, ledger, cfg.RateLimit.TrustedProxyHeader, nil),
		AdminAuthMiddleware:    middleware.NewAdminAuthMiddleware(logger, cfg.Admin.Token),
		CORSMiddleware:         middleware.NewCORSGlobalMiddleware(cfg.CORS.AllowOrigins, cfg.CORS.AllowMethods, cfg.CORS.MaxAge),
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(),
	}

	handlerTransport := &handlers.HandlerTransportDTO{
		CreatePostHandler:      handlers.NewCreatePostHandler(logger, repo, hub, nil),
		ListPostsHandler:       handlers.NewListPostsHandler(logger, repo),
		ReactPostHandler:       handlers.NewReactPostHandler(logger, repo, hub),
		GetPostImageHandler:    handlers.NewGetPostImageHandler(logger, repo),
		ImportPostsHandler:     handlers.NewImportPostsHandler(logger, repo, nil),
		ExportPostsHandler:     handlers.NewExportPostsHandler(logger, repo),
		DeletePostHandler:      handlers.NewDeletePostHandler(logger, repo, hub),
		ListBlacklistHandler:   handlers.NewListBlacklistHandler(logger, ledger, nil),
		BlacklistActionHandler: handlers.NewBlacklistActionHandler(logger, ledger, nil),
		GetVersionHandler:      handlers.NewGetVersionHandler(logger),
	}

	wsHandlerTransport := &wshandlers.HandlerTransportDTO{
		LiveHandler: wshandlers.NewLiveHandler(logger, hub),
	}

	srv := server.NewApiServer(server.ApiServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		WSHandlerTransport:  wsHandlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	ledger.Stop()
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}
