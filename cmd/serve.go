package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoparts-storefront/app"
	"autoparts-storefront/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// sweepInterval is how often idle quick order workspaces are dropped
const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront HTTP API",
	Long:  "Serve the storefront HTTP API until SIGINT or SIGTERM, then shut down gracefully",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	a, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.S().Errorf("❌ Shutdown: %v", err)
		}
	}()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.S().Infof("🚀 Server starting on %s", addr)
		logging.S().Infof("Quick order endpoint: POST http://localhost:%s/quick-order/paste/parse", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.Workspaces.Run(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.S().Info("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.S().Info("✓ Server stopped")
	return nil
}
