package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP report service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, cleanup, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer cleanup()

	log := app.Logger
	log.Info("config loaded", zap.String("config", cfgFile), zap.String("version", Version))

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- app.HTTPServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	}

	if err := app.HTTPServer.Stop(context.Background()); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
		return err
	}
	if err := <-serverDone; err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
