// Command server runs the artikel JSON:API blog service.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (--config flag, ARTIKEL_CONFIG, ./config.yaml or
// /etc/artikel/config.yaml), then ARTIKEL_* environment overrides.
//
// Common environment variables:
//
//	ARTIKEL_PORT          - Listen port (default: 8080)
//	ARTIKEL_STORAGE       - Storage type: "memory", "sqlite" or "postgres"
//	ARTIKEL_SQLITE_PATH   - SQLite database file
//	ARTIKEL_POSTGRES_DSN  - PostgreSQL connection string
//	ARTIKEL_AUTH_PROVIDER - Delegated login provider: "none", "github" or "google"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/auth/provider"
	"github.com/rhuss/artikel/pkg/config"
	"github.com/rhuss/artikel/pkg/observability"
	"github.com/rhuss/artikel/pkg/pagination"
	"github.com/rhuss/artikel/pkg/storage"
	"github.com/rhuss/artikel/pkg/storage/memory"
	"github.com/rhuss/artikel/pkg/storage/postgres"
	"github.com/rhuss/artikel/pkg/storage/sqlite"
	"github.com/rhuss/artikel/pkg/transport"
	transporthttp "github.com/rhuss/artikel/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	prov, err := newProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating auth provider: %w", err)
	}

	pages := pagination.Config{
		DefaultSize: cfg.Pagination.DefaultSize,
		MaxSize:     cfg.Pagination.MaxSize,
	}

	middlewares := []transport.Middleware{
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(slog.Default()),
	}
	if cfg.Observability.Metrics.Enabled {
		middlewares = append(middlewares, observability.MetricsMiddleware)
	}

	adapter := transporthttp.NewAdapter(store, prov, pages, middlewares...)

	mux := http.NewServeMux()
	mux.Handle("/", adapter.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.HealthCheck(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	srv := transporthttp.NewServer(mux,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	)

	slog.Info("server configured",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"auth_provider", cfg.Auth.Provider)

	return srv.ListenAndServe()
}

// openStore creates the store named by the configuration.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "memory":
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	case "sqlite":
		slog.Info("storage enabled", "type", "sqlite", "path", cfg.Storage.SQLite.Path)
		return sqlite.Open(cfg.Storage.SQLite.Path)
	case "postgres":
		slog.Info("storage enabled", "type", "postgres")
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// newProvider creates the delegated login provider, or nil when only
// standard login/password authentication is configured.
func newProvider(ctx context.Context, cfg *config.Config) (auth.Provider, error) {
	switch cfg.Auth.Provider {
	case "", "none":
		return nil, nil
	case "github":
		return provider.NewGitHub(provider.GitHubConfig{
			ClientID:     cfg.Auth.GitHub.ClientID,
			ClientSecret: cfg.Auth.GitHub.ClientSecret,
			RedirectURL:  cfg.Auth.GitHub.RedirectURL,
		}), nil
	case "google":
		return provider.NewGoogle(ctx, provider.GoogleConfig{
			ClientID:     cfg.Auth.Google.ClientID,
			ClientSecret: cfg.Auth.Google.ClientSecret,
			RedirectURL:  cfg.Auth.Google.RedirectURL,
		})
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
