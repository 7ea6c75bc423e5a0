// Package hub is the publish-subscribe primitive behind the live channel:
// a registry of subscriber handles plus a Publish that fans the current
// note snapshot out to every connected subscriber.
package hub

import (
	"sync"

	"collab_notes/internal/logger"
	"collab_notes/internal/models"

	"github.com/google/uuid"
)

// IdentityState is the tri-state result of connection-time authentication.
type IdentityState int

const (
	// Anonymous: no token, or an invalid token under the permissive policy.
	// The connection is read-only but still receives snapshots.
	Anonymous IdentityState = iota
	// Authenticated: a valid token attached a user to the connection.
	Authenticated
	// Rejected: invalid token under the strict policy; never subscribed.
	Rejected
)

// Identity is the advisory identity attached to a live connection.
// It does not gate snapshot delivery.
type Identity struct {
	State  IdentityState
	UserID string // set only when State == Authenticated
}

// queueSize bounds the per-subscriber snapshot queue. Snapshots are full
// state, so the queue coalesces: when full, the oldest entry is dropped.
const queueSize = 8

// Subscriber is one live connection's handle in the broadcast set.
type Subscriber struct {
	id       string
	identity Identity
	send     chan []models.Note
}

// ID returns the opaque connection id.
func (s *Subscriber) ID() string { return s.id }

// Identity returns the identity attached at connect time.
func (s *Subscriber) Identity() Identity { return s.identity }

// Snapshots is the stream of note snapshots for this subscriber.
// It is closed on Unsubscribe.
func (s *Subscriber) Snapshots() <-chan []models.Note { return s.send }

// Hub maintains the set of connected subscribers and pushes snapshots to
// all of them on every note mutation.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
	log  *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subs: make(map[string]*Subscriber),
		log:  log,
	}
}

// Subscribe registers a new live connection and returns its handle.
func (h *Hub) Subscribe(identity Identity) *Subscriber {
	sub := &Subscriber{
		id:       uuid.NewString(),
		identity: identity,
		send:     make(chan []models.Note, queueSize),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	if h.log != nil {
		h.log.Infow("hub_subscribed", "conn", sub.id, "state", identity.State)
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its snapshot stream.
// Unknown ids are a no-op, so a disconnect racing a publish is harmless.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	close(sub.send)
	if h.log != nil {
		h.log.Infow("hub_unsubscribed", "conn", id)
	}
}

// Count reports the current number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish enqueues the snapshot for every connected subscriber. Delivery is
// best-effort and never blocks: a subscriber with a full queue loses its
// oldest pending snapshot, not the newest one.
func (h *Hub) Publish(snapshot []models.Note) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.send <- snapshot:
		default:
			// Queue full: drop the oldest entry, then try once more. If the
			// queue filled up again in between, this snapshot is superseded
			// anyway.
			select {
			case <-sub.send:
			default:
			}
			select {
			case sub.send <- snapshot:
			default:
			}
		}
	}
}
