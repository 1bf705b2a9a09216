package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/config"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/output"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and websocket widget bridge",
		Long: `Serves GET /v1/context (record inferred from request headers),
GET /v1/widget (websocket bridge for a remote feedback widget),
GET /v1/inspect (last published record, only with CLIENTCTX_INSPECT=1)
and GET /healthz.

Settings come from CLIENTCTX_* environment variables; --addr overrides
CLIENTCTX_PORT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.ListenAddr = addr
			}
			progress := output.NewVerboseProgress(true, verbose || cfg.Verbose)
			return runServer(cfg, progress)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :$CLIENTCTX_PORT)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runServer(cfg config.Config, progress *output.Progress) error {
	handler := server.NewHandler(cfg, progress.Logger())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		progress.Log("clientctx listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
	}

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
