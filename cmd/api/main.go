// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "custody-wallet/internal"
	"custody-wallet/internal/api/handler"
	"custody-wallet/internal/util"
)

// shutdownGrace bounds how long in-flight transfers get to commit on SIGTERM.
const shutdownGrace = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		// The logger may not exist yet if configuration failed to load.
		util.GetLogger().Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	logger := application.Logger

	server := &http.Server{
		Addr:              ":" + application.Config.ServerPort,
		Handler:           application.HTTPHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Leave room for the router timeout to write its own response.
		WriteTimeout: handler.DefaultTimeout + 2*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "port", application.Config.ServerPort, "threshold", application.Config.Threshold.String())
		serverErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped unexpectedly", "error", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining HTTP server")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		exitCode = 1
	}
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("Application shutdown failed", "error", err)
		exitCode = 1
	}

	logger.Info("Application stopped", "exit_code", exitCode)
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
