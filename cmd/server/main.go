package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brunobiangulo/docsection"
	"github.com/brunobiangulo/docsection/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML or JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	cfg := docsection.DefaultConfig()
	cfg.Log.Format = "json"
	if *configPath != "" {
		var err error
		cfg, err = docsection.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		slog.Error("reading environment", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.Setup(cfg.Log, os.Stderr)
	if err != nil {
		slog.Error("setting up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	cfg.Logger = logger

	ex, err := docsection.New(cfg, nil)
	if err != nil {
		logger.Error("creating extractor", "error", err)
		os.Exit(1)
	}

	router := newRouter(docsection.NewSession(ex), logger, routerOptions{
		APIKey:       os.Getenv("DOCSECTION_API_KEY"),
		CORSOrigins:  os.Getenv("DOCSECTION_CORS_ORIGINS"),
		DocumentRoot: cfg.DocumentRoot,
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // extraction of large documents can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", *addr, "backends", ex.Backends(), "document_root", cfg.DocumentRoot)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

type routerOptions struct {
	APIKey       string
	CORSOrigins  string
	DocumentRoot string
}

// newRouter wires the routes behind the middleware chain
// recovery -> cors -> auth -> logging.
func newRouter(sess *docsection.Session, logger *slog.Logger, opts routerOptions) http.Handler {
	h := newHandler(sess, opts.DocumentRoot)

	r := chi.NewRouter()
	r.Use(recoveryMiddleware(logger))
	r.Use(corsMiddleware(opts.CORSOrigins))
	r.Use(middleware.RequestID)
	r.Use(authMiddleware(opts.APIKey))
	r.Use(logMiddleware(logger))

	r.Post("/extract", h.handleExtract)
	r.Post("/search", h.handleSearch)
	r.Post("/compare", h.handleCompare)
	r.Get("/backends", h.handleBackends)
	r.Get("/health", h.handleHealth)

	return r
}
