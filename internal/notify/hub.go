// Package notify fans task events out to push subscribers.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-assistant/internal/logging"
	"task-assistant/internal/observability"
)

// EventTasksUpdated is broadcast after any mutation of the store.
const EventTasksUpdated = "tasks_updated"

// Event is one broadcast message.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
}

// NewEvent stamps an event of the given type.
func NewEvent(eventType string, at time.Time) Event {
	return Event{Type: eventType, Timestamp: at.UTC(), ID: uuid.NewString()}
}

// Conn is the write side of a subscriber connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub is the registry of push subscribers. Broadcast never blocks: a
// subscriber whose queue is full or whose write fails is dropped.
type Hub struct {
	mu           sync.Mutex
	subs         map[string]*Subscriber
	bufferSize   int
	writeTimeout time.Duration
	metrics      *observability.Metrics
	logger       *slog.Logger
}

type Option func(*Hub)

func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) { h.writeTimeout = d }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:         make(map[string]*Subscriber),
		bufferSize:   16,
		writeTimeout: 5 * time.Second,
		logger:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds conn and starts its writer. The subscriber stays
// registered until Unregister, Close, or a failed delivery.
func (h *Hub) Register(conn Conn) *Subscriber {
	s := &Subscriber{
		id:    uuid.NewString(),
		hub:   h,
		conn:  conn,
		queue: make(chan any, h.bufferSize),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()

	h.metrics.SubscriberAdded()
	h.logger.Debug("subscriber registered", "subscriber_id", s.id)

	go s.writeLoop()
	return s
}

// Unregister removes s and closes its connection once queued writes end.
// Calling it more than once is harmless.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s.id]
	delete(h.subs, s.id)
	h.mu.Unlock()

	s.closeQueue()
	if ok {
		h.metrics.SubscriberRemoved()
		h.logger.Debug("subscriber unregistered", "subscriber_id", s.id)
	}
}

// Broadcast queues ev for every subscriber without waiting on any of them.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		delivered := s.Send(ev)
		h.metrics.IncDelivery(delivered)
		if !delivered {
			h.logger.Warn("dropping slow subscriber", "subscriber_id", s.id, "event", ev.Type)
			h.Unregister(s)
		}
	}
}

// Len reports the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		h.Unregister(s)
	}
}

// Subscriber is one registered connection. All writes to the connection go
// through its queue so there is a single writer.
type Subscriber struct {
	id     string
	hub    *Hub
	conn   Conn
	mu     sync.Mutex
	closed bool
	queue  chan any
	done   chan struct{}
}

func (s *Subscriber) ID() string { return s.id }

// Done is closed once the writer has stopped and the connection is closed.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Send queues msg for this subscriber only. It reports false when the
// subscriber is closed or its queue is full.
func (s *Subscriber) Send(msg any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscriber) closeQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

func (s *Subscriber) writeLoop() {
	defer close(s.done)
	defer s.conn.Close()

	for msg := range s.queue {
		if s.hub.writeTimeout > 0 {
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.writeTimeout))
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			s.hub.logger.Debug("subscriber write failed", "subscriber_id", s.id, "error", err)
			s.hub.Unregister(s)
			return
		}
	}
}
