package shutdown

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelcast/internal/pkg/logger"
)

// lockedBuffer lets handler goroutines log while the test reads.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger() (*logger.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return logger.New(logger.Config{
		Level:  "debug",
		Format: "json",
		Output: buf,
	}), buf
}

func TestNewManagerDefaultsTimeout(t *testing.T) {
	log, _ := newTestLogger()

	assert.Equal(t, 30*time.Second, NewManager(log, 0).timeout)
	assert.Equal(t, 330*time.Second, NewManager(log, 330*time.Second).timeout)
}

func TestRegisterKeepsOrder(t *testing.T) {
	log, _ := newTestLogger()
	mgr := NewManager(log, 5*time.Second)

	mgr.Register("http", func(context.Context) error { return nil })
	mgr.RegisterSimple("redis", func() {})

	require.Len(t, mgr.handlers, 2)
	assert.Equal(t, "http", mgr.handlers[0].Name)
	assert.Equal(t, "redis", mgr.handlers[1].Name)
}

func TestShutdownRunsEveryHandler(t *testing.T) {
	log, _ := newTestLogger()
	mgr := NewManager(log, 5*time.Second)

	var mu sync.Mutex
	var ran []string
	for _, name := range []string{"worker", "postgres", "redis"} {
		mgr.Register(name, func(context.Context) error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return nil
		})
	}
	var simple atomic.Bool
	mgr.RegisterSimple("flush", func() { simple.Store(true) })

	mgr.Shutdown()

	// Shutdown returns once every handler finished.
	assert.ElementsMatch(t, []string{"worker", "postgres", "redis"}, ran)
	assert.True(t, simple.Load())

	select {
	case <-mgr.Done():
	default:
		t.Fatal("Done must be closed after Shutdown")
	}
}

func TestShutdownLogsHandlerErrors(t *testing.T) {
	log, buf := newTestLogger()
	mgr := NewManager(log, 5*time.Second)

	mgr.Register("worker", func(context.Context) error {
		return context.DeadlineExceeded
	})
	mgr.Shutdown()

	assert.Contains(t, buf.String(), "shutdown handler failed")
	assert.Contains(t, buf.String(), "worker")
}

func TestContextCanceledBeforeHandlersFinish(t *testing.T) {
	log, _ := newTestLogger()
	mgr := NewManager(log, 5*time.Second)
	loopCtx := mgr.Context()

	// The handler mirrors the worker drain: it waits for its loop to
	// notice cancellation, then for release.
	observed := make(chan error, 1)
	release := make(chan struct{})
	mgr.Register("worker", func(ctx context.Context) error {
		select {
		case <-loopCtx.Done():
			observed <- loopCtx.Err()
		case <-time.After(2 * time.Second):
			observed <- nil
		}
		<-release
		return nil
	})

	finished := make(chan struct{})
	go func() {
		mgr.Shutdown()
		close(finished)
	}()

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled, "loop context is canceled while handlers still run")
	case <-time.After(3 * time.Second):
		t.Fatal("handler never ran")
	}

	select {
	case <-finished:
		t.Fatal("Shutdown returned before the handler was released")
	default:
	}

	close(release)
	<-finished
}

func TestShutdownGivesUpAfterTimeout(t *testing.T) {
	log, buf := newTestLogger()
	mgr := NewManager(log, 100*time.Millisecond)

	var handlerCtxErr atomic.Value
	mgr.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			handlerCtxErr.Store(ctx.Err())
		}
		return nil
	})

	start := time.Now()
	mgr.Shutdown()

	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, buf.String(), "shutdown timeout exceeded")
	assert.Eventually(t, func() bool {
		err, _ := handlerCtxErr.Load().(error)
		return err == context.DeadlineExceeded
	}, time.Second, 10*time.Millisecond, "handler context carries the deadline")
}
