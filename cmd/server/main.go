package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FileVault/internal/auth"
	"FileVault/internal/config"
	"FileVault/internal/handlers"
	"FileVault/internal/middleware"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Debugw("Failed to sync logger", "error", err)
		}
	}()

	// остановка по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize blob storage", "backend", cfg.StorageBackend, "error", err)
	}

	tokens := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
	userService := service.NewUserService(repo.NewUserRepository(gormDB), tokens)
	contentService := service.NewContentService(
		repo.NewFolderRepository(gormDB),
		repo.NewFileRepository(gormDB),
		store,
		cfg.LinkTTL,
		cfg.FileMaxBytes(),
		sugar,
	)

	h := handlers.NewHandler(userService, contentService, store, tokens, sugar, cfg)
	defer h.Close()

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"StorageBackend", cfg.StorageBackend,
		"RateLimit", cfg.RateLimit,
		"FileMaxSizeMB", cfg.FileMaxSizeMB,
	)
	if cfg.AuthSecret == "dev-secret-key" {
		sugar.Warnw("AUTH_SECRET is not set, using development secret")
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting server", "addr", srv.Addr)
		if cfg.EnableHTTPS {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	case <-ctx.Done():
		sugar.Infow("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
		}
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newBlobStore выбирает бэкенд хранилища по конфигурации.
func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.StorageBackend == config.StorageS3 {
		return storage.NewS3Store(ctx, storage.S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
		})
	}
	return storage.NewLocalStore(cfg.StorageDir, cfg.PublicURL, cfg.AuthSecret)
}
