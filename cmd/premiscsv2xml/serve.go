package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
	"github.com/JonMunkholm/premiscsv2xml/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and the /api/convert endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder, closeLedger, err := openLedger(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	defer closeLedger()

	converter := core.NewConverter(core.Options{
		PreserveObjectOrder: a.cfg.Convert.PreserveObjectOrder,
		Indent:              a.cfg.Convert.Indent,
	}, recorder)
	server := web.NewServer(converter, a.cfg)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.cfg.Server.Addr(), "ledger", a.cfg.Database.LedgerEnabled())
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
