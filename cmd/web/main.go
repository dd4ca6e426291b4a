package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/middleware"
	"finance-dashboard/internal/observability"
	"finance-dashboard/internal/server"
	"finance-dashboard/internal/services"
	"finance-dashboard/internal/taxonomy"
	"finance-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	seedTimeout   = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func newHandler(cfg *config.Config, logger *slog.Logger, ledger *services.Ledger, importer *services.Importer) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(ledger, importer, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.BodyLimit(cfg.Dataset.MaxUploadBytes),
	)

	return middlewareChain(srv)
}

func seed(ctx context.Context, logger *slog.Logger, importer *services.Importer, path string) error {
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	start := time.Now()
	n, err := importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	logger.Info("seed dataset loaded", "file", path, "records", n, "duration", time.Since(start))
	return nil
}

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	tax, err := taxonomy.Load(cfg.Taxonomy.MappingFile, cfg.Taxonomy.CategoriesFile)
	if err != nil {
		logger.Error("failed to load category taxonomy", "error", err)
		os.Exit(1)
	}
	logger.Info("category taxonomy loaded",
		"labels", tax.Len(),
		"categories", len(tax.Categories()),
	)

	ledger := services.NewLedger(tax, logger)
	importer := services.NewImporter(ledger, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Dataset.SeedFile != "" {
		if err := seed(ctx, logger, importer, cfg.Dataset.SeedFile); err != nil {
			logger.Error("failed to load seed dataset", "file", cfg.Dataset.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, logger, ledger, importer),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("ledger", func(ctx context.Context) error {
		logger.Info("shutting down ledger", "stats", ledger.Stats())
		return nil
	})

	if err := gracefulServer.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
