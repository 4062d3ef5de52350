package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/api"
	"github.com/tendant/simple-upload/pkg/simpleupload/config"
	fsstorage "github.com/tendant/simple-upload/pkg/simpleupload/storage/fs"
)

func main() {
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("failed to load server configuration", "err", err)
		os.Exit(1)
	}

	store, err := serverConfig.BuildStore()
	if err != nil {
		slog.Error("failed to build storage backend", "backend", serverConfig.StorageBackend, "err", err)
		os.Exit(1)
	}

	svc, err := simpleupload.New(
		simpleupload.WithStore(serverConfig.StorageBackend, store),
		simpleupload.WithContentType(serverConfig.UploadContentType),
		simpleupload.WithExpiry(serverConfig.UploadExpiry()),
	)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: routes(svc, store, serverConfig),
	}

	go func() {
		slog.Info("simple-upload server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"backend", serverConfig.StorageBackend,
			"content_type", serverConfig.UploadContentType,
			"expiry_seconds", serverConfig.UploadExpirySeconds)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

func routes(svc simpleupload.Service, store simpleupload.ObjectStore, serverConfig *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handleHealth(serverConfig))
	r.Get("/", api.HandleUploaderPage)

	uploadHandler := api.NewUploadHandler(svc, api.HandlerConfig{
		ContentType:    serverConfig.UploadContentType,
		MaxUploadBytes: serverConfig.MaxUploadBytes,
		JWTSecret:      serverConfig.JWTSecret,
		AllowedOrigins: serverConfig.CORSAllowedOrigins,
	})
	r.Mount("/api/v1", uploadHandler.Routes())

	// The fs backend plays the store's part itself: mount the handlers
	// that honor its presigned URLs.
	if fsBackend, ok := store.(*fsstorage.Backend); ok {
		fsstorage.NewHandlers(fsBackend).Mount(r)
	}

	return r
}

func handleHealth(serverConfig *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","environment":%q,"storage_backend":%q}`,
			serverConfig.Environment, serverConfig.StorageBackend)
	}
}
