// Package sse manages long-lived push subscribers: one per connected client,
// periodic liveness pulses, teardown on disconnect. Closed subscribers get no
// replay; reconnection starts fresh.
package sse

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
)

// Event types pushed to subscribers
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
	EventOperation = "operation"
)

// DefaultHeartbeatInterval keeps intermediaries from dropping idle streams
const DefaultHeartbeatInterval = 30 * time.Second

// Event is one server-sent event
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// FormatSSE renders the event in text/event-stream framing
func (e Event) FormatSSE() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + e.Type + "\ndata: " + string(data) + "\n\n"
}

// Identity is the server identity snapshot carried by the connection
// announcement
type Identity struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SubscriberState is the per-subscriber lifecycle
type SubscriberState int32

const (
	StateConnecting SubscriberState = iota
	StateOpen
	StateClosed
)

// Subscriber is one connected client. Events are delivered on a buffered
// channel; a subscriber that cannot drain its buffer by heartbeat time is
// torn down rather than allowed to stall the hub.
type Subscriber struct {
	ID     string
	Events chan Event

	mu    sync.Mutex
	state SubscriberState
	done  chan struct{}
}

// State returns the subscriber's current lifecycle state
func (s *Subscriber) State() SubscriberState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Subscriber) setState(st SubscriberState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Done is closed when the subscriber is torn down
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Hub owns all subscribers and fans events out to them
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber

	heartbeat time.Duration
	identity  Identity
	logger    *logger.Logger
	nextID    int
}

// NewHub creates a hub announcing the given identity to new subscribers
func NewHub(heartbeat time.Duration, identity Identity, log *logger.Logger) *Hub {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		heartbeat:   heartbeat,
		identity:    identity,
		logger:      log,
	}
}

// Subscribe registers a new subscriber. The subscriber transitions
// Connecting -> Open and receives the connection announcement before any
// other event; a heartbeat loop then pulses it until teardown.
func (h *Hub) Subscribe(id string) *Subscriber {
	sub := &Subscriber{
		ID:     id,
		Events: make(chan Event, 16),
		state:  StateConnecting,
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if sub.ID == "" {
		h.nextID++
		sub.ID = "sub-" + strconv.Itoa(h.nextID)
	}
	// caller-supplied ids may collide; every subscriber keeps its own slot
	for {
		if _, taken := h.subscribers[sub.ID]; !taken {
			break
		}
		h.nextID++
		sub.ID = sub.ID + "-" + strconv.Itoa(h.nextID)
	}
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()

	// announcement goes out first, while nothing else can race it
	sub.Events <- Event{Type: EventConnected, Data: h.identity}
	sub.setState(StateOpen)

	go h.heartbeatLoop(sub)

	h.logger.Debug("subscriber connected", zap.String("subscriber_id", sub.ID))
	return sub
}

// Unsubscribe tears a subscriber down: state Closed, heartbeat stopped,
// slot released. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[sub.ID] != sub {
		return
	}
	delete(h.subscribers, sub.ID)
	sub.setState(StateClosed)
	close(sub.done)
	close(sub.Events)

	h.logger.Debug("subscriber disconnected", zap.String("subscriber_id", sub.ID))
}

// Broadcast delivers an event to every open subscriber. Delivery is
// non-blocking: a subscriber with a full buffer misses the event rather than
// holding everyone else up.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		if sub.State() != StateOpen {
			continue
		}
		select {
		case sub.Events <- event:
		default:
			h.logger.Warn("subscriber buffer full, event dropped",
				zap.String("subscriber_id", sub.ID),
				zap.String("event", event.Type),
			)
		}
	}
}

// Count reports the number of registered subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown tears down every subscriber
func (h *Hub) Shutdown() {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		h.Unsubscribe(sub)
	}
}

// heartbeatLoop pulses one subscriber until teardown. A pulse that cannot be
// queued means the client stopped draining; only that subscriber is torn
// down, never the hub.
func (h *Hub) heartbeatLoop(sub *Subscriber) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			h.mu.RLock()
			registered := h.subscribers[sub.ID] == sub
			delivered := false
			if registered {
				select {
				case sub.Events <- Event{Type: EventHeartbeat, Data: time.Now().Unix()}:
					delivered = true
				default:
				}
			}
			h.mu.RUnlock()

			if !registered {
				return
			}
			if !delivered {
				h.Unsubscribe(sub)
				return
			}
		}
	}
}
