package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PratikDhanave/delivery-time-analytics/internal/config"
	"github.com/PratikDhanave/delivery-time-analytics/internal/httpserver"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/store"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "serve",
		Short:         "Start the delivery-time HTTP service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.LoadServer(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	command.Flags().String("addr", ":8080", "Address to listen on.")
	command.Flags().String("db_url", "", "Postgres connection string, events are kept in memory when empty (env DB_URL).")
	return command
}

// serve boots the service: store -> schema -> HTTP server, and shuts down
// gracefully on SIGINT or SIGTERM.
func serve(ctx context.Context, cfg config.Server) error {
	log := logging.FromContext(ctx)

	st, err := openStore(ctx, cfg.DBURL, log)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpserver.NewRouter(cfg, st, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server started", "addr", cfg.Addr, "tenants", len(cfg.APIKeys))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects to Postgres and applies the schema, or falls back to
// an in-memory store when dbURL is empty.
func openStore(ctx context.Context, dbURL string, log *zap.SugaredLogger) (store.EventStore, error) {
	if dbURL == "" {
		log.Warnw("No database configured, events are kept in memory")
		return store.NewMemoryStore(), nil
	}
	pg, err := store.NewPostgresStore(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
