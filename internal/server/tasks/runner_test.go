package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_DoesNotBlockAndRuns(t *testing.T) {
	r := NewRunner(logging.Nop{}, 2)

	release := make(chan struct{})
	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		r.Submit("job", func(ctx context.Context) {
			<-release
			ran.Add(1)
		})
	}

	close(release)
	require.NoError(t, r.Shutdown(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
}

func TestSubmit_RespectsConcurrencyLimit(t *testing.T) {
	r := NewRunner(logging.Nop{}, 1)

	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	for i := 0; i < 4; i++ {
		r.Submit("job", func(ctx context.Context) {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}

	require.NoError(t, r.Shutdown(context.Background()))
	assert.Equal(t, 1, peak)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	r := NewRunner(logging.Nop{}, 1)

	r.Submit("boom", func(ctx context.Context) { panic("boom") })

	var ran atomic.Bool
	r.Submit("after", func(ctx context.Context) { ran.Store(true) })

	require.NoError(t, r.Shutdown(context.Background()))
	assert.True(t, ran.Load())
}

func TestShutdown_CancelsJobsAndDropsNewOnes(t *testing.T) {
	r := NewRunner(logging.Nop{}, 1)

	started := make(chan struct{})
	var sawCancel atomic.Bool
	r.Submit("long", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	})
	<-started

	require.NoError(t, r.Shutdown(context.Background()))
	assert.True(t, sawCancel.Load())

	var ran atomic.Bool
	r.Submit("late", func(ctx context.Context) { ran.Store(true) })
	time.Sleep(5 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestShutdown_Deadline(t *testing.T) {
	r := NewRunner(logging.Nop{}, 1)

	block := make(chan struct{})
	defer close(block)
	r.Submit("stuck", func(ctx context.Context) { <-block })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
}
