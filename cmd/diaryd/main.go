// Package main provides the entry point for the hosted diary backend.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mydiary/mydiary/internal/di"
)

func main() {
	injector := di.NewServerContainer(os.Args[1:])

	if err := di.BootstrapServer(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := di.Logger(injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container stops the HTTP server, the cleanup job and the
	// database in reverse dependency order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Goodbye")
}
