package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/axitome/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily publisher and the HTTP API",
	Long: `Publish the card for each day to the outbox at local midnight and
serve today's card, the corpus and the run history over HTTP.`,
	RunE: runServe,
}

var serveNoAPI bool

func init() {
	serveCmd.Flags().BoolVar(&serveNoAPI, "no-api", false, "run the scheduler only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Config.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if _, err := a.OpenStore(ctx); err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	sched := a.Scheduler()
	errCh := make(chan error, 2)
	go func() {
		errCh <- sched.Run(ctx)
	}()

	var srv *api.Server
	if !serveNoAPI {
		srv = api.New(api.Config{
			Builder: a.Builder,
			Store:   a.Store,
			Health:  sched.Health(),
		})
		go func() {
			errCh <- srv.Start(a.Config.ServeAddr)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}

	slog.Info("shutting down")
	cancel()

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("api shutdown", "error", err)
		}
	}

	return runErr
}
