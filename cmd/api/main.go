package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/riskscope/internal/bootstrap"
	"github.com/bryanwahyu/riskscope/internal/config"
	"github.com/bryanwahyu/riskscope/internal/infra/httpserver"
	"github.com/bryanwahyu/riskscope/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()

	// storage + transport + session
	session, store, err := bootstrap.NewSession(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer store.Close()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond)

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(session, httpserver.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		APIKeys:        cfg.Auth.APIKeys,
		RateLimiter:    limiter,
		HealthCheckers: store.HealthCheckers(cfg.Storage.Key),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// the risk service may take a while to answer
		WriteTimeout: cfg.Transport.Timeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
