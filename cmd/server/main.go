// Package main is the container entry point. It reads the bootstrapper
// contract from the environment (APP_MODULE, PORT), resolves the referenced
// service against the compiled-in registry, and serves it until the process
// receives a termination signal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	// Registers the default "app:app" service.
	_ "github.com/Devis28/melody-now/internal/app"

	"github.com/Devis28/melody-now/internal/bootstrap"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := bootstrap.FromEnv(os.LookupEnv)
	if err != nil {
		fatal(err)
	}

	b, err := bootstrap.New(cfg)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		fatal(err)
	}
}

// fatal reports the failure kind on stderr and exits non-zero: 1 for
// configuration and resolution failures, 2 for bind and runtime faults, so
// a supervisor can tell bad config from a contended port.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "melody-now: %v\n", err)

	var cfgErr *bootstrap.ConfigurationError
	var resErr *bootstrap.ResolutionError
	if errors.As(err, &cfgErr) || errors.As(err, &resErr) {
		os.Exit(1)
	}
	os.Exit(2)
}
