package app

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HandlerSwitch is the process-lifetime http.Handler in front of the generations. It
// forwards to the mounted generation. Between generations requests wait for the next
// mount instead of failing, so a client that follows a redirect issued by the old
// generation reaches the new one.
type HandlerSwitch struct {
	mu      sync.Mutex
	current *mounted
	ready   chan struct{} // closed while current != nil
	wait    time.Duration
}

type mounted struct {
	h        http.Handler
	inflight sync.WaitGroup
}

// NewHandlerSwitch returns a switch with nothing mounted. Requests wait at most wait for
// a generation before getting 503.
func NewHandlerSwitch(wait time.Duration) *HandlerSwitch {
	return &HandlerSwitch{ready: make(chan struct{}), wait: wait}
}

// Mount routes new requests to h. The returned function unmounts h and waits, bounded by
// ctx, for the requests h is still serving.
func (s *HandlerSwitch) Mount(h http.Handler) (unmount func(ctx context.Context) error) {
	m := &mounted{h: h}

	s.mu.Lock()
	if s.current == nil {
		close(s.ready)
	}
	s.current = m
	s.mu.Unlock()

	return func(ctx context.Context) error {
		s.mu.Lock()
		if s.current == m {
			s.current = nil
			s.ready = make(chan struct{})
		}
		s.mu.Unlock()

		drained := make(chan struct{})
		go func() {
			m.inflight.Wait()
			close(drained)
		}()
		select {
		case <-drained:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Hold detaches the mounted generation so new requests wait for the next Mount, while
// requests already inside it finish. Call it together with Supervisor.Restart so that
// nothing issued after a restart request is served by the outgoing generation.
func (s *HandlerSwitch) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current = nil
		s.ready = make(chan struct{})
	}
}

// acquire returns the mounted generation with its in-flight count already raised, or the
// channel that closes on the next mount.
func (s *HandlerSwitch) acquire() (*mounted, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.inflight.Add(1)
		return s.current, nil
	}
	return nil, s.ready
}

func (s *HandlerSwitch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var timeout <-chan time.Time
	for {
		m, ready := s.acquire()
		if m != nil {
			defer m.inflight.Done()
			m.h.ServeHTTP(w, r)
			return
		}

		if timeout == nil {
			t := time.NewTimer(s.wait)
			defer t.Stop()
			timeout = t.C
		}
		select {
		case <-ready:
		case <-r.Context().Done():
			return
		case <-timeout:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Service restarting, try again shortly.", http.StatusServiceUnavailable)
			return
		}
	}
}
