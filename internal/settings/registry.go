// Package settings holds the backend endpoint registry: the single persisted URL the
// dashboard fetches its data from, and the only path by which it changes.
package settings

import (
	"context"
	"fmt"
	"log/slog"

	applog "opsboard/internal/log"
)

// EndpointKey is the storage key the endpoint URL lives under.
const EndpointKey = "api_url"

// State describes whether an endpoint has been configured.
type State int

const (
	Unconfigured State = iota
	Configured
)

func (s State) String() string {
	if s == Configured {
		return "configured"
	}
	return "unconfigured"
}

// Endpoint is the immutable endpoint value handed to one application generation.
type Endpoint struct {
	URL string
}

// State reports Unconfigured for an empty URL. The URL is never trimmed or validated.
func (e Endpoint) State() State {
	if e.URL == "" {
		return Unconfigured
	}
	return Configured
}

// Configured is shorthand for State() == Configured.
func (e Endpoint) Configured() bool { return e.State() == Configured }

type (
	// Store is a durable key-value facility.
	Store interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key, value string) error
	}

	// Restarter reinitializes the running application.
	Restarter interface {
		Restart()
	}

	// Notifier is told about locally saved endpoints so peers can apply them.
	Notifier interface {
		EndpointChanged(ctx context.Context, url string) error
	}
)

// RestartFunc adapts a function to Restarter.
type RestartFunc func()

func (f RestartFunc) Restart() { f() }

// Registry owns the endpoint value.
type Registry struct {
	kv        Store
	restarter Restarter
	notifier  Notifier
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier publishes every Save to n after it is stored.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(store Store, restarter Restarter, opts ...Option) *Registry {
	r := &Registry{kv: store, restarter: restarter, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the persisted endpoint. A missing value yields an unconfigured Endpoint.
func (r *Registry) Load(ctx context.Context) (Endpoint, error) {
	v, ok, err := r.kv.Get(ctx, EndpointKey)
	if err != nil {
		return Endpoint{}, fmt.Errorf("load endpoint: %w", err)
	}
	var ep Endpoint
	if ok {
		ep.URL = v
	}
	r.logger.DebugContext(ctx, "Backend endpoint loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldState, ep.State().String())
	return ep, nil
}

// Save stores url verbatim and then signals exactly one restart. Nothing is signalled
// when the write fails.
func (r *Registry) Save(ctx context.Context, url string) error {
	if err := r.persist(ctx, url, applog.OpSave); err != nil {
		return err
	}
	if r.notifier != nil {
		// The local change is already durable; a failed broadcast only affects peers.
		if err := r.notifier.EndpointChanged(ctx, url); err != nil {
			r.logger.WarnContext(ctx, "Failed to broadcast endpoint change", "error", err)
		}
	}
	return nil
}

// Apply stores url and restarts without notifying peers. It is the entry point for
// changes that originated on another instance.
func (r *Registry) Apply(ctx context.Context, url string) error {
	return r.persist(ctx, url, applog.OpApply)
}

func (r *Registry) persist(ctx context.Context, url, op string) error {
	if err := r.kv.Set(ctx, EndpointKey, url); err != nil {
		return fmt.Errorf("save endpoint: %w", err)
	}
	r.logger.InfoContext(ctx, "Backend endpoint saved",
		applog.FieldOperation, op,
		applog.FieldState, Endpoint{URL: url}.State().String(),
		"length", len(url))
	if r.restarter != nil {
		r.restarter.Restart()
	}
	return nil
}
