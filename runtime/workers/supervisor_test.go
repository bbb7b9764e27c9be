package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type panickingWorker struct {
	calls atomic.Int32
}

func (w *panickingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	panic("boom")
}

type finishingWorker struct {
	calls atomic.Int32
}

func (w *finishingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	return nil
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	worker := &panickingWorker{}
	sup := NewSupervisor(slog.Default(), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(400 * time.Millisecond)

	req.GreaterOrEqual(worker.calls.Load(), int32(2))
}

func TestSupervisor_CleanExitIsNotRestarted(t *testing.T) {
	req := require.New(t)
	worker := &finishingWorker{}
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	sup.Add(worker).Run(ctx)

	req.Equal(int32(1), worker.calls.Load())
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)
	started := make(chan struct{})
	blocking := workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)
	sup.Add(blocking)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("supervisor did not stop")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
