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

	"roomchat/backend/internal/api/handler"
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/localization"
	"roomchat/backend/internal/metrics"
	"roomchat/backend/internal/retention"
	"roomchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting roomchat backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage and coordinator
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer store.Close()

	m := metrics.New()
	hub := chathub.NewManagerService(store, cfg.ChatSettings())
	hub.Metrics = m
	if err := hub.Restore(ctx); err != nil {
		log.Fatalf("Failed to restore chat document: %v", err)
	}

	// 2. Retention sweep
	if cfg.Retention.Enabled {
		scheduler, err := retention.NewScheduler(cfg.Retention.Cron, hub)
		if err != nil {
			log.Fatalf("Failed to start retention: %v", err)
		}
		scheduler.Start(ctx)
	} else {
		log.Println("INFO: retention disabled")
	}

	// 3. Gin and routes
	r := gin.Default()
	h := handler.NewHandler(hub, localization.Bundled(), m, cfg.RateLimit)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.Server.Address,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("INFO: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: graceful shutdown failed: %v", err)
	}
}
