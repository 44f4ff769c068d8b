package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ordersconsole/internal/client"
	"ordersconsole/internal/config"
	"ordersconsole/internal/dashboard"
	"ordersconsole/internal/infrastructure/httpclient"
	"ordersconsole/internal/infrastructure/logger"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/order"
	"ordersconsole/internal/product"
	"ordersconsole/internal/server"
	"ordersconsole/internal/session"
	"ordersconsole/internal/shell"
	"ordersconsole/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	catalog, err := messages.Load(cfg.Console.MessagesFile)
	if err != nil {
		zapLogger.Fatal("loading messages", zap.String("file", cfg.Console.MessagesFile), zap.Error(err))
	}

	format, err := web.NewFormatter(cfg.Console.Locale, cfg.Console.Currency)
	if err != nil {
		zapLogger.Fatal("creating formatter", zap.Error(err))
	}

	transport := httpclient.New(cfg.API.URL, cfg.API.Timeout, zapLogger)
	backend := shell.Backend{
		Clients:  client.NewAPI(transport),
		Products: product.NewAPI(transport),
		Orders:   order.NewAPI(transport),
	}
	zapLogger.Info("using backend", zap.String("url", transport.BaseURL()))

	shellOpts := shell.Options{
		NotificationTTL: cfg.Console.NotificationTTL,
		Dashboard: dashboard.Settings{
			LowStockThreshold: cfg.Console.LowStockThreshold,
			ListLimit:         cfg.Console.DashboardListLimit,
		},
	}
	sessions := session.NewStore(func() *shell.Shell {
		return shell.New(backend, catalog, shellOpts, zapLogger)
	}, zapLogger,
		session.WithIdleTimeout(cfg.Server.SessionIdleTimeout),
		session.WithMaxSessions(cfg.Server.MaxSessions),
	)
	defer sessions.Close()

	router, err := server.NewRouter(server.RouterConfig{
		Sessions:   sessions,
		Formatter:  format,
		Theme:      web.DefaultTheme(),
		RenderWait: cfg.Server.RenderWait,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("building router", zap.Error(err))
	}

	srv := server.New(cfg.Server.Port, router, server.DefaultTimeouts(), zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
