// Package registry maps service references onto statically compiled service
// implementations. The original deployment resolved a "<module>:<attribute>"
// string by importing the module at startup; here every launchable service is
// compiled into the binary and registers a factory under that same two-part
// key, so the string lookup stays confined to this package.
package registry

import (
	"context"
	"net/http"
)

// Service is the contract every launchable service must implement.
// The bootstrapper starts the service, mounts its router on the bound
// listener, and stops it during shutdown.
type Service interface {
	// Lifecycle manages service startup and shutdown.
	Start(ctx context.Context) error
	Stop() error

	// Router returns the service's HTTP handler for the bound listener.
	Router() http.Handler

	// HealthCheck returns nil if the service is able to serve requests.
	HealthCheck() error
}

// Factory creates a new service instance. Each service registers its
// factory via an init() function.
type Factory func() (Service, error)
