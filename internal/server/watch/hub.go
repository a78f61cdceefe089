// Package watch fans out committed Character changes to in-process
// subscribers.
package watch

import (
	"sync"

	"github.com/dmitrijs2005/charstudio/internal/server/models"
)

const subscriberBuffer = 4

// Hub is an in-memory publish/subscribe registry keyed by character id.
// Slow subscribers lose intermediate updates but always receive the latest
// one published, which is enough because status only moves forward.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan *models.Character]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan *models.Character]struct{})}
}

// Subscribe registers interest in one character. The returned cancel
// function unregisters and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(characterID string) (<-chan *models.Character, func()) {
	ch := make(chan *models.Character, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[characterID]
	if !ok {
		set = make(map[chan *models.Character]struct{})
		h.subs[characterID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[characterID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, characterID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a copy of c to every subscriber of c.ID without blocking.
// When a subscriber's buffer is full its oldest pending update is discarded.
func (h *Hub) Publish(c *models.Character) {
	if c == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[c.ID] {
		update := c.Clone()
		select {
		case ch <- update:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- update:
		default:
		}
	}
}

// Subscribers reports how many subscriptions exist for a character.
func (h *Hub) Subscribers(characterID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[characterID])
}
