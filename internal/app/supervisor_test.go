package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeInstance struct {
	stopped  chan struct{}
	once     sync.Once
	cleaned  atomic.Bool
	serveErr error
}

func newFake() *fakeInstance {
	return &fakeInstance{stopped: make(chan struct{})}
}

func (f *fakeInstance) instance() *Instance {
	return &Instance{
		Serve: func() error {
			if f.serveErr != nil {
				return f.serveErr
			}
			<-f.stopped
			return nil
		},
		Shutdown: func(context.Context) error {
			f.once.Do(func() { close(f.stopped) })
			return nil
		},
		Cleanup: func() error {
			f.cleaned.Store(true)
			return nil
		},
	}
}

type recorder struct {
	mu        sync.Mutex
	instances []*fakeInstance
	started   chan int
}

func newRecorder() *recorder {
	return &recorder{started: make(chan int, 16)}
}

func (r *recorder) build(_ context.Context, gen int) (*Instance, error) {
	f := newFake()
	r.mu.Lock()
	r.instances = append(r.instances, f)
	r.mu.Unlock()
	r.started <- gen
	return f.instance(), nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

func waitGen(t *testing.T, r *recorder, want int) {
	t.Helper()
	select {
	case got := <-r.started:
		if got != want {
			t.Fatalf("expected generation %d, got %d", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("generation %d never started", want)
	}
}

func TestRestartRebuildsGeneration(t *testing.T) {
	s := NewSupervisor(nil, time.Second)
	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, r.build) }()

	waitGen(t, r, 1)
	s.Restart()
	waitGen(t, r, 2)

	r.mu.Lock()
	first := r.instances[0]
	r.mu.Unlock()
	if !first.cleaned.Load() {
		t.Fatal("first generation should be cleaned up before the second starts")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if r.count() != 2 {
		t.Fatalf("expected 2 generations, got %d", r.count())
	}
}

func TestRestartRequestsCoalesce(t *testing.T) {
	s := NewSupervisor(nil, time.Second)
	// Requests made before Run are absorbed into a single pending restart.
	s.Restart()
	s.Restart()
	s.Restart()

	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, r.build) }()

	waitGen(t, r, 1)
	waitGen(t, r, 2)

	select {
	case gen := <-r.started:
		t.Fatalf("unexpected generation %d", gen)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestCancelShutsDownAndCleansUp(t *testing.T) {
	s := NewSupervisor(nil, time.Second)
	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, r.build) }()

	waitGen(t, r, 1)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !r.instances[0].cleaned.Load() {
		t.Fatal("expected cleanup on shutdown")
	}
}

func TestBuildErrorStopsSupervisor(t *testing.T) {
	s := NewSupervisor(nil, time.Second)
	boom := errors.New("listen: address in use")
	err := s.Run(context.Background(), func(context.Context, int) (*Instance, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
}

func TestServeErrorStopsSupervisor(t *testing.T) {
	s := NewSupervisor(nil, time.Second)
	boom := errors.New("accept failed")
	f := newFake()
	f.serveErr = boom
	err := s.Run(context.Background(), func(context.Context, int) (*Instance, error) {
		return f.instance(), nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected serve error, got %v", err)
	}
	if !f.cleaned.Load() {
		t.Fatal("expected cleanup after serve error")
	}
}
