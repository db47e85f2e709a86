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

	"retailpos/backend/internal/advisor"
	"retailpos/backend/internal/cache"
	"retailpos/backend/internal/config"
	"retailpos/backend/internal/httpapi"
	"retailpos/backend/internal/service"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/store/memory"
	pgstore "retailpos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	case cfg.DataDir != "":
		mem, err := memory.NewPersistent(cfg.DataDir)
		if err != nil {
			log.Fatalf("cannot open data dir %s: %v", cfg.DataDir, err)
		}
		repo = mem
		log.Printf("repository: in-memory with snapshots at %s", cfg.DataDir)
	default:
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	advisoryCache := cache.AdvisoryCache(cache.NoopAdvisoryCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisAdvisoryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			advisoryCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("advisory cache: redis")
		}
	} else {
		log.Println("advisory cache: noop")
	}

	var adv advisor.Advisor = advisor.Offline{}
	if cfg.GeminiAPIKey != "" {
		adv = advisor.NewGeminiClient(cfg.GeminiAPIKey,
			advisor.WithCache(advisoryCache, time.Duration(cfg.AdvisoryTTLSeconds)*time.Second))
		log.Println("advisor: gemini")
	} else {
		log.Println("advisor: offline (GEMINI_API_KEY not set)")
	}

	svc := service.New(repo, adv)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	if err := auth.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap users: %v", err)
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
