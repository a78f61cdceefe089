package observer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type scriptedSource struct {
	statuses []string
	err      error
	i        int
}

func (s *scriptedSource) Recv() (*api.WatchCharacterResponse, error) {
	if s.i >= len(s.statuses) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	st := s.statuses[s.i]
	s.i++
	return &api.WatchCharacterResponse{Character: &api.Character{ID: "c1", Status: st}}, nil
}

type recorder struct {
	updates  []string
	ready    int
	failed   int
	notFound []string
}

func (r *recorder) attach(o *Observer) *Observer {
	o.OnUpdate = func(c *api.Character) { r.updates = append(r.updates, c.Status) }
	o.OnReady = func(*api.Character) { r.ready++ }
	o.OnFailed = func(*api.Character) { r.failed++ }
	o.OnNotFound = func(id string) { r.notFound = append(r.notFound, id) }
	return o
}

func TestObserve_ReadyAfterDelay(t *testing.T) {
	rec := &recorder{}
	o := rec.attach(New(30 * time.Millisecond))

	start := time.Now()
	err := o.Observe(context.Background(), "c1", &scriptedSource{statuses: []string{"pending", "training", "ready"}})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, []string{"pending", "training", "ready"}, rec.updates)
	assert.Equal(t, 1, rec.ready)
	assert.Zero(t, rec.failed)
}

func TestObserve_DropsOutOfOrderUpdates(t *testing.T) {
	rec := &recorder{}
	o := rec.attach(New(time.Millisecond))

	err := o.Observe(context.Background(), "c1", &scriptedSource{statuses: []string{"training", "pending", "training", "ready"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"training", "training", "ready"}, rec.updates)
	assert.Equal(t, 1, rec.ready)
}

func TestObserve_ErrorCallsFailedOnce(t *testing.T) {
	rec := &recorder{}
	o := rec.attach(New(time.Millisecond))

	src := &scriptedSource{statuses: []string{"pending", "training", "error", "ready"}}
	require.NoError(t, o.Observe(context.Background(), "c1", src))

	assert.Equal(t, 1, rec.failed)
	assert.Zero(t, rec.ready)
	assert.Equal(t, 3, src.i, "observer stops reading after a terminal status")
}

func TestObserve_NotFoundIsDistinct(t *testing.T) {
	rec := &recorder{}
	o := rec.attach(New(time.Millisecond))

	src := &scriptedSource{err: status.Error(codes.NotFound, "character not found")}
	require.NoError(t, o.Observe(context.Background(), "ghost", src))

	assert.Equal(t, []string{"ghost"}, rec.notFound)
	assert.Zero(t, rec.failed)
	assert.Empty(t, rec.updates)
}

func TestObserve_CancelledBeforeReadyDelay(t *testing.T) {
	rec := &recorder{}
	o := rec.attach(New(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	o.OnUpdate = func(c *api.Character) {
		if c.Status == "ready" {
			cancel()
		}
	}

	err := o.Observe(ctx, "c1", &scriptedSource{statuses: []string{"ready"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.ready)
}

func TestObserve_StreamEndsEarly(t *testing.T) {
	o := New(time.Millisecond)
	err := o.Observe(context.Background(), "c1", &scriptedSource{statuses: []string{"pending"}})
	assert.ErrorIs(t, err, ErrStreamEnded)
}

func TestObserve_TransportError(t *testing.T) {
	o := New(time.Millisecond)
	boom := status.Error(codes.Unavailable, "down")
	err := o.Observe(context.Background(), "c1", &scriptedSource{err: boom})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestObserve_NilCallbacks(t *testing.T) {
	o := &Observer{ReadyDelay: time.Millisecond}
	require.NoError(t, o.Observe(context.Background(), "c1", &scriptedSource{statuses: []string{"ready"}}))
	require.NoError(t, o.Observe(context.Background(), "c1", &scriptedSource{statuses: []string{"error"}}))
	require.NoError(t, o.Observe(context.Background(), "c1", &scriptedSource{err: status.Error(codes.NotFound, "x")}))
}

func TestNew_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultReadyDelay, New(0).ReadyDelay)
	assert.Equal(t, time.Second, New(time.Second).ReadyDelay)
}
