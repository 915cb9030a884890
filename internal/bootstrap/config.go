// Package bootstrap turns environment-provided configuration into a running,
// network-bound service process. It resolves which registered service to run,
// binds the listener, serves until shutdown, and fails fast with a typed
// error when configuration is invalid or the target service cannot be found.
package bootstrap

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Environment variables understood by FromEnv.
const (
	EnvAppModule     = "APP_MODULE"
	EnvPort          = "PORT"
	EnvHost          = "HOST"
	EnvShutdownGrace = "SHUTDOWN_GRACE"
)

// Defaults applied when a variable is unset.
const (
	DefaultServiceRef    = "app:app"
	DefaultPort          = 8080
	DefaultShutdownGrace = 30 * time.Second
)

// Config is the bootstrapper's entire input, read once at startup and never
// mutated. Core logic takes this struct rather than reading the process
// environment, so tests inject values directly.
type Config struct {
	// ServiceRef is the "<module>:<attribute>" reference to the service
	// object to run.
	ServiceRef string

	// Host is the interface to bind. Empty means all interfaces.
	Host string

	// Port is the TCP port to bind, in [1, 65535].
	Port int

	// ShutdownGrace bounds how long in-flight requests may finish during
	// shutdown before the server is torn down.
	ShutdownGrace time.Duration
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FromEnv builds a Config from a lookup function (typically os.LookupEnv).
// Absent values get defaults; present but invalid values are a
// ConfigurationError. The service reference's shape is validated here so a
// malformed APP_MODULE fails before any resolution or bind is attempted.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		ServiceRef:    DefaultServiceRef,
		Port:          DefaultPort,
		ShutdownGrace: DefaultShutdownGrace,
	}

	if raw, ok := lookup(EnvAppModule); ok {
		cfg.ServiceRef = raw
	}
	if _, err := ParseServiceRef(cfg.ServiceRef); err != nil {
		return Config{}, err
	}

	if raw, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, &ConfigurationError{Name: EnvPort, Value: raw, Reason: "not an integer"}
		}
		if port < 1 || port > 65535 {
			return Config{}, &ConfigurationError{Name: EnvPort, Value: raw, Reason: "outside range 1-65535"}
		}
		cfg.Port = port
	}

	if raw, ok := lookup(EnvHost); ok {
		cfg.Host = strings.TrimSpace(raw)
	}

	if raw, ok := lookup(EnvShutdownGrace); ok {
		grace, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil || grace <= 0 {
			return Config{}, &ConfigurationError{Name: EnvShutdownGrace, Value: raw, Reason: "not a positive duration"}
		}
		cfg.ShutdownGrace = grace
	}

	return cfg, nil
}

// ServiceRef is a parsed "<module>:<attribute>" service reference.
type ServiceRef struct {
	Module    string
	Attribute string
}

func (r ServiceRef) String() string {
	return fmt.Sprintf("%s:%s", r.Module, r.Attribute)
}

// ParseServiceRef splits a service reference into module and attribute.
// Both halves must be non-empty and the reference must contain exactly one
// separator.
func ParseServiceRef(s string) (ServiceRef, error) {
	module, attribute, ok := strings.Cut(s, ":")
	if !ok {
		return ServiceRef{}, &ConfigurationError{
			Name:   EnvAppModule,
			Value:  s,
			Reason: "missing ':' separator, want <module>:<attribute>",
		}
	}
	if module == "" || attribute == "" || strings.Contains(attribute, ":") {
		return ServiceRef{}, &ConfigurationError{
			Name:   EnvAppModule,
			Value:  s,
			Reason: "malformed reference, want <module>:<attribute>",
		}
	}
	return ServiceRef{Module: module, Attribute: attribute}, nil
}
