package main

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

	"github.com/goliatone/go-game-config/internal/seed"
	"github.com/goliatone/go-game-config/pkg/di"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container, err := di.NewContainer(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := container.Close(); err != nil {
				log.Warn("shutdown: close container", zap.Error(err))
			}
		}()

		if seedOnStart {
			if _, err := seed.Run(ctx, container.Service(), log); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           container.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
			return err
		}
		log.Info("http server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", true, "create the default configuration if it is missing")
}
