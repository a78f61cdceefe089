// Package observer follows the status of one character on the client side
// and decides when to show the result, a failure or a missing record.
// It only reads; it never changes a character.
package observer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	StatusPending  = "pending"
	StatusTraining = "training"
	StatusReady    = "ready"
	StatusError    = "error"
)

// DefaultReadyDelay gives the user a moment to see the ready state before
// the result view opens.
const DefaultReadyDelay = 1500 * time.Millisecond

// ErrStreamEnded is returned when the server closes the stream before a
// terminal status was seen.
var ErrStreamEnded = errors.New("status stream ended before a terminal status")

// rank orders statuses. Ready and Error are both terminal and share a rank.
func rank(s string) int {
	switch s {
	case StatusPending:
		return 0
	case StatusTraining:
		return 1
	case StatusReady, StatusError:
		return 2
	default:
		return -1
	}
}

// Source is a stream of character snapshots, typically the WatchCharacter
// client stream.
type Source interface {
	Recv() (*api.WatchCharacterResponse, error)
}

// Observer reacts to status changes of a single character. Nil callbacks
// are skipped.
type Observer struct {
	ReadyDelay time.Duration

	OnUpdate   func(c *api.Character)
	OnReady    func(c *api.Character)
	OnFailed   func(c *api.Character)
	OnNotFound func(characterID string)
}

// New returns an Observer with the given ready delay; a non-positive delay
// means DefaultReadyDelay.
func New(readyDelay time.Duration) *Observer {
	if readyDelay <= 0 {
		readyDelay = DefaultReadyDelay
	}
	return &Observer{ReadyDelay: readyDelay}
}

// Observe reads src until the character reaches a terminal status, the
// record turns out not to exist, ctx ends or the stream fails.
//
// Updates with a lower status rank than one already seen are dropped. On
// Ready, OnReady fires after ReadyDelay unless ctx ends first, in which
// case ctx.Err() is returned and OnReady is never called. On Error,
// OnFailed fires once and there is no retry. A NotFound status calls
// OnNotFound and is not an error.
func (o *Observer) Observe(ctx context.Context, characterID string, src Source) error {
	seen := -1

	for {
		resp, err := src.Recv()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return ErrStreamEnded
			case status.Code(err) == codes.NotFound:
				if o.OnNotFound != nil {
					o.OnNotFound(characterID)
				}
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				return fmt.Errorf("watch %s: %w", characterID, err)
			}
		}

		c := resp.Character
		if c == nil {
			continue
		}
		r := rank(c.Status)
		if r < seen {
			continue
		}
		seen = r

		if o.OnUpdate != nil {
			o.OnUpdate(c)
		}

		switch c.Status {
		case StatusReady:
			return o.ready(ctx, c)
		case StatusError:
			if o.OnFailed != nil {
				o.OnFailed(c)
			}
			return nil
		}
	}
}

func (o *Observer) ready(ctx context.Context, c *api.Character) error {
	timer := time.NewTimer(o.ReadyDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if o.OnReady != nil {
		o.OnReady(c)
	}
	return nil
}
