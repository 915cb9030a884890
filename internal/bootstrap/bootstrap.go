package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Devis28/melody-now/internal/registry"
	"github.com/Devis28/melody-now/pkg/logger"
)

// Bootstrapper resolves a service reference against a registry, binds the
// configured address, and serves the resolved service until its context is
// cancelled. It has two phases: Resolving (no socket is touched until the
// reference resolves) and Serving.
type Bootstrapper struct {
	cfg Config
	ref ServiceRef
	reg *registry.Registry
	log *logger.Logger

	mu    sync.Mutex
	bound net.Addr
}

// Option customizes a Bootstrapper.
type Option func(*Bootstrapper)

// WithRegistry resolves service references against reg instead of the
// process-wide default registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Bootstrapper) { b.reg = reg }
}

// WithLogger sets the bootstrapper's logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *Bootstrapper) { b.log = log }
}

// New validates cfg and creates a Bootstrapper. A malformed service
// reference or out-of-range port is a ConfigurationError.
func New(cfg Config, opts ...Option) (*Bootstrapper, error) {
	ref, err := ParseServiceRef(cfg.ServiceRef)
	if err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, &ConfigurationError{Name: EnvPort, Value: "", Reason: "outside range 1-65535"}
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}

	b := &Bootstrapper{
		cfg: cfg,
		ref: ref,
		reg: registry.Default,
		log: nil,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.NewDefault("bootstrap")
	}
	return b, nil
}

// Ref returns the parsed service reference.
func (b *Bootstrapper) Ref() ServiceRef {
	return b.ref
}

// BoundAddr returns the listener address once Run has bound it, nil before.
func (b *Bootstrapper) BoundAddr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bound
}

// Resolve looks the service reference up in the registry and constructs the
// service. Failures are ResolutionErrors; no socket has been created yet.
func (b *Bootstrapper) Resolve() (registry.Service, error) {
	factory, err := b.reg.Lookup(b.ref.Module, b.ref.Attribute)
	if err != nil {
		return nil, &ResolutionError{Ref: b.ref, Err: err}
	}
	svc, err := factory()
	if err != nil {
		return nil, &ResolutionError{Ref: b.ref, Err: err}
	}
	return svc, nil
}

// Run resolves, binds, and serves. It blocks until ctx is cancelled (graceful
// shutdown, returns nil) or a fatal error occurs. The error is one of the
// bootstrap error kinds.
func (b *Bootstrapper) Run(ctx context.Context) error {
	svc, err := b.Resolve()
	if err != nil {
		return err
	}
	b.log.WithField("service", b.ref.String()).Info("service reference resolved")

	addr := b.cfg.Addr()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	b.mu.Lock()
	b.bound = ln.Addr()
	b.mu.Unlock()

	if err := svc.Start(ctx); err != nil {
		ln.Close()
		return &RuntimeFault{Err: err}
	}

	server := &http.Server{
		Handler:      svc.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()
	b.log.WithField("addr", ln.Addr().String()).Info("serving")

	select {
	case <-ctx.Done():
		b.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), b.cfg.ShutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			b.log.WithField("error", err).Warn("shutdown did not complete within grace period")
			server.Close()
		}
		<-serveErr
		if err := svc.Stop(); err != nil {
			b.log.WithField("error", err).Warn("service stop failed")
		}
		return nil
	case err := <-serveErr:
		stopErr := svc.Stop()
		if stopErr != nil {
			b.log.WithField("error", stopErr).Warn("service stop failed")
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return &RuntimeFault{Err: err}
		}
		return nil
	}
}
