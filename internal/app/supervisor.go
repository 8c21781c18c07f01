// Package app runs the application as a sequence of generations. Each generation is
// built from a fresh read of persisted settings; a restart request tears the current one
// down completely before the next is built.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	applog "opsboard/internal/log"
)

// Instance is one running generation of the application.
type Instance struct {
	// Serve blocks until the instance stops. It returns nil after a requested Shutdown.
	// Optional: an instance without Serve runs until the next restart.
	Serve func() error
	// Shutdown asks Serve to return, waiting at most until ctx is done.
	Shutdown func(ctx context.Context) error
	// Cleanup releases resources once Serve has returned. Optional.
	Cleanup func() error
}

// BuildFunc constructs the generation numbered gen (starting at 1).
type BuildFunc func(ctx context.Context, gen int) (*Instance, error)

// Supervisor owns the restart signal. Requests coalesce: while one restart is pending,
// further requests are absorbed by it.
type Supervisor struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	restart         chan struct{}
}

func NewSupervisor(logger *slog.Logger, shutdownTimeout time.Duration) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Supervisor{
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		restart:         make(chan struct{}, 1),
	}
}

// Restart requests a rebuild of the running generation. It never blocks.
func (s *Supervisor) Restart() {
	select {
	case s.restart <- struct{}{}:
	default:
	}
}

// Run builds and serves generations until ctx is cancelled or a generation fails on its
// own. A build error stops the supervisor.
func (s *Supervisor) Run(ctx context.Context, build BuildFunc) error {
	for gen := 1; ; gen++ {
		inst, err := build(ctx, gen)
		if err != nil {
			return fmt.Errorf("build generation %d: %w", gen, err)
		}
		s.logger.Info("Generation started", "generation", gen, applog.FieldOperation, applog.OpStartup)

		var served chan error
		if inst.Serve != nil {
			served = make(chan error, 1)
			go func() { served <- inst.Serve() }()
		}

		var (
			stop      bool
			serveErr  error
			serveDone bool
		)
		select {
		case <-ctx.Done():
			stop = true
		case <-s.restart:
			s.logger.Info("Restart requested", "generation", gen, applog.FieldOperation, applog.OpRestart)
		case serveErr = <-served:
			serveDone = true
			stop = true
		}

		s.teardown(gen, inst, served, serveDone)

		if stop {
			if serveErr != nil {
				return fmt.Errorf("generation %d: %w", gen, serveErr)
			}
			if ctx.Err() == nil && serveDone {
				s.logger.Warn("Generation stopped without a shutdown request", "generation", gen)
			}
			return nil
		}
	}
}

func (s *Supervisor) teardown(gen int, inst *Instance, served <-chan error, serveDone bool) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if !serveDone {
		if inst.Shutdown != nil {
			if err := inst.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Shutdown error", "generation", gen, "error", err)
			}
		}
		if served != nil {
			select {
			case err := <-served:
				if err != nil {
					s.logger.Error("Serve returned error during shutdown", "generation", gen, "error", err)
				}
			case <-shutdownCtx.Done():
				s.logger.Warn("Shutdown timeout reached", "generation", gen)
			}
		}
	}

	if inst.Cleanup != nil {
		if err := inst.Cleanup(); err != nil {
			s.logger.Error("Cleanup error", "generation", gen, "error", err)
		}
	}
	s.logger.Info("Generation stopped", "generation", gen, applog.FieldOperation, applog.OpShutdown)
}
