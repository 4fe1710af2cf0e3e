// Package main is the entry point for the mercadito admin API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mercadito/internal/auth"
	"mercadito/internal/config"
	"mercadito/internal/controller"
	v1 "mercadito/internal/infrastructure/http/v1"
	"mercadito/internal/orders"
	"mercadito/internal/schema"
	"mercadito/internal/storage/objectstore"
	"mercadito/internal/storage/postgres"
	"mercadito/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting mercadito admin server")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.PGDSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	audit, err := postgres.NewAuditLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit log", "error", err)
	}

	schemas := schema.Default()
	repos := postgres.NewRepos(schemas, txManager, audit)

	files, err := objectstore.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.UploadMaxBytes)
	if err != nil {
		log.Fatalw("failed to initialize file store", "error", err)
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.TTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtCfg)
	authService := auth.NewService(postgres.NewUserReader(txManager), jwtService)

	controllers := controller.NewManager(schemas, repos)

	lineRepo, _ := repos.Repo("orden_detalle")
	orderRepo, _ := repos.Repo("orden")
	productRepo, _ := repos.Repo("producto")
	ordersManager := orders.NewManager(lineRepo, orderRepo, productRepo)

	router := v1.NewRouter(v1.RouterConfig{
		Schemas:     schemas,
		Repos:       repos,
		Files:       files,
		Controllers: controllers,
		Orders:      ordersManager,
		AuthService: authService,
		JWT:         jwtService,
		UploadDir:   cfg.UploadDir,
		Production:  cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		log.Infow("listening", "addr", cfg.AppAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
