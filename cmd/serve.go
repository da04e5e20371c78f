package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/portal/internal/cataloging"
	"github.com/lehigh-university-libraries/portal/internal/config"
	"github.com/lehigh-university-libraries/portal/internal/handlers"
	"github.com/lehigh-university-libraries/portal/internal/metrics"
	"github.com/lehigh-university-libraries/portal/internal/session"
	"github.com/lehigh-university-libraries/portal/internal/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the library portal web server",
		Long: `Starts the library portal on the configured address.

Without --catalog the built-in sample collection is served. With --watch the
catalog file is reloaded whenever it changes on disk.`,
		Example: `  # Start server on default port 8888 with the sample catalog
  portal serve

  # Serve a catalog file and pick up edits
  portal serve --catalog books.yaml --watch

  # Custom address
  portal serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd, map[string]string{
				"server.addr":   "addr",
				"catalog.path":  "catalog",
				"catalog.watch": "watch",
			})
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "Address to listen on (default :8888)")
	cmd.Flags().String("catalog", "", "Catalog file to serve (.yaml, .json, .jsonl or .parquet)")
	cmd.Flags().Bool("watch", false, "Reload the catalog file when it changes")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()

	books, err := openCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	svc, err := cataloging.NewService(books, storage.NewReservationStore(), cataloging.Options{
		CacheSize:      cfg.Catalog.CacheSize,
		SearchLatency:  cfg.Latency.Search,
		ReserveLatency: cfg.Latency.Reserve,
		Metrics:        m,
	})
	if err != nil {
		return err
	}

	secret, csrfKey, err := cfg.SessionKeys()
	if err != nil {
		return err
	}
	handler, err := handlers.New(handlers.Deps{
		Catalog:     svc,
		Auth:        session.NewAuthenticator(session.NewAccountStore(), m, cfg.Session.StaffPrefix, cfg.Latency.Login),
		Sessions:    session.NewManager(secret, cfg.Session.Secure, cfg.Session.MaxAge),
		Metrics:     m,
		StaffPrefix: cfg.Session.StaffPrefix,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(handlers.RouterOptions{CSRFKey: csrfKey, Secure: cfg.Session.Secure}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Library portal available", "addr", cfg.Server.Addr, "books", len(svc.Books()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Catalog.Watch {
		watcher := storage.NewWatcher(cfg.Catalog.Path, svc.ReplaceCatalog, 0)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	})

	return g.Wait()
}

// openCatalog loads path into a store, or seeds the sample collection when path is empty
func openCatalog(path string) (*storage.BookStore, error) {
	if path == "" {
		slog.Info("No catalog file configured, serving sample collection")
		return storage.NewSeeded(), nil
	}
	books, err := storage.Load(path)
	if err != nil {
		return nil, err
	}
	store := storage.New()
	if err := store.Replace(books); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	slog.Info("Loaded catalog", "path", path, "books", store.Len())
	return store, nil
}
