package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeWatchStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent chan *api.Character
}

func newWatchStream(ctx context.Context) *fakeWatchStream {
	return &fakeWatchStream{ctx: ctx, sent: make(chan *api.Character, 16)}
}

func (f *fakeWatchStream) Context() context.Context { return f.ctx }

func (f *fakeWatchStream) Send(m *api.WatchCharacterResponse) error {
	f.sent <- m.Character
	return nil
}

func recv(t *testing.T, ch <-chan *api.Character) *api.Character {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
		return nil
	}
}

func TestWatchCharacter_TerminalSnapshotEndsImmediately(t *testing.T) {
	fc := &fakeCharacters{get: []*models.Character{character("c1", models.StatusError)}}
	s, _ := newTestServer(fc)

	stream := newWatchStream(withUser(context.Background(), "u1"))
	require.NoError(t, s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "c1"}, stream))

	assert.Equal(t, "error", recv(t, stream.sent).Status)
	assert.Empty(t, stream.sent)
}

func TestWatchCharacter_FollowsHubUntilReady(t *testing.T) {
	fc := &fakeCharacters{get: []*models.Character{character("c1", models.StatusPending)}}
	s, hub := newTestServer(fc)
	s.pollInterval = time.Hour

	stream := newWatchStream(withUser(context.Background(), "u1"))
	done := make(chan error, 1)
	go func() { done <- s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "c1"}, stream) }()

	assert.Equal(t, "pending", recv(t, stream.sent).Status)

	hub.Publish(character("c1", models.StatusPending))
	hub.Publish(character("c1", models.StatusTraining))
	assert.Equal(t, "training", recv(t, stream.sent).Status)

	ready := character("c1", models.StatusReady)
	ready.CharacterName = "Nova"
	hub.Publish(ready)
	got := recv(t, stream.sent)
	assert.Equal(t, "ready", got.Status)
	assert.Equal(t, "Nova", got.CharacterName)

	require.NoError(t, <-done)
	assert.Zero(t, hub.Subscribers("c1"))
}

func TestWatchCharacter_PollsForOutOfProcessChanges(t *testing.T) {
	fc := &fakeCharacters{get: []*models.Character{
		character("c1", models.StatusTraining),
		character("c1", models.StatusTraining),
		character("c1", models.StatusError),
	}}
	s, _ := newTestServer(fc)
	s.pollInterval = 5 * time.Millisecond

	stream := newWatchStream(withUser(context.Background(), "u1"))
	require.NoError(t, s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "c1"}, stream))

	assert.Equal(t, "training", recv(t, stream.sent).Status)
	assert.Equal(t, "error", recv(t, stream.sent).Status)
	assert.Empty(t, stream.sent)
}

func TestWatchCharacter_NotFound(t *testing.T) {
	s, _ := newTestServer(&fakeCharacters{getErr: common.ErrorNotFound})

	stream := newWatchStream(withUser(context.Background(), "u1"))
	err := s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "nope"}, stream)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestWatchCharacter_ClientGoesAway(t *testing.T) {
	fc := &fakeCharacters{get: []*models.Character{character("c1", models.StatusPending)}}
	s, _ := newTestServer(fc)
	s.pollInterval = time.Hour

	ctx, cancel := context.WithCancel(withUser(context.Background(), "u1"))
	stream := newWatchStream(ctx)
	done := make(chan error, 1)
	go func() { done <- s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "c1"}, stream) }()

	recv(t, stream.sent)
	cancel()

	err := <-done
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestWatchCharacter_EndsOnServerShutdown(t *testing.T) {
	fc := &fakeCharacters{get: []*models.Character{character("c1", models.StatusTraining)}}
	s, _ := newTestServer(fc)
	s.pollInterval = time.Hour

	stream := newWatchStream(withUser(context.Background(), "u1"))
	done := make(chan error, 1)
	go func() { done <- s.WatchCharacter(&api.WatchCharacterRequest{CharacterID: "c1"}, stream) }()

	recv(t, stream.sent)
	s.beginStop()
	s.beginStop()

	select {
	case err := <-done:
		assert.Equal(t, codes.Unavailable, status.Code(err))
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not end on shutdown")
	}
}
