package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"hireprep/internal/app"
	"hireprep/internal/config"
	"hireprep/internal/server"
	"hireprep/internal/util"
	"hireprep/pkg/ai"
	"hireprep/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	generator := ai.NewOpenAICompatGenerator(
		cfg.AIBaseURL,
		cfg.AIAPIKey,
		cfg.AIModel,
		time.Duration(cfg.AITimeoutSeconds)*time.Second,
	)

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			util.Fatal("failed to init object store", "err", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		SessionTTL:    time.Duration(cfg.SessionTTLHours) * time.Hour,
		Generator:     generator,
		Objects:       objects,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer := server.New(server.Config{
		App:              appCore,
		StaticDir:        cfg.StaticDir,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		SessionCookieTTL: cfg.SessionTTLHours * 3600,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("hireprep server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
	}
}
