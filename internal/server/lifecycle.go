// Package server coordinates startup and graceful shutdown of the
// long-running pieces of the spillrom process.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service
// ends or fails; Stop asks it to end.
type Service interface {
	Start() error
	Stop()
}

// Lifecycle starts registered services in order and stops them in
// reverse order on SIGINT, SIGTERM, a service failure, or context
// cancellation.
type Lifecycle struct {
	log     *zap.Logger
	entries []entry
}

type entry struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty lifecycle.
//
// Precondition: log must be non-nil.
func NewLifecycle(log *zap.Logger) *Lifecycle {
	return &Lifecycle{log: log}
}

// Add registers a service under a name used in log output. Services
// start in registration order.
func (l *Lifecycle) Add(name string, svc Service) {
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every registered service and blocks until shutdown is
// triggered, then stops them in reverse order.
//
// Postcondition: every service's Stop has been called on return.
func (l *Lifecycle) Run(ctx context.Context) error {
	started := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failed := make(chan error, len(l.entries))
	for _, e := range l.entries {
		e := e
		go func() {
			l.log.Info("service starting", zap.String("service", e.name))
			if err := e.svc.Start(); err != nil {
				failed <- fmt.Errorf("service %s: %w", e.name, err)
				cancel()
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		l.log.Info("signal received", zap.String("signal", sig.String()))
	case err := <-failed:
		l.log.Error("service failed", zap.Error(err))
	case <-ctx.Done():
		l.log.Info("context cancelled")
	}

	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		l.log.Info("service stopping", zap.String("service", e.name))
		e.svc.Stop()
	}

	l.log.Info("shutdown complete", zap.Duration("uptime", time.Since(started)))
	return nil
}
