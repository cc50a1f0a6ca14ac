package events

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vsinha/bomengine/pkg/logger"
)

// InMemoryEventStore keeps one ordered log of every BOM event plus an index
// of log offsets per stream. Subscribers are notified asynchronously; Wait
// blocks until pending notifications are delivered.
type InMemoryEventStore struct {
	mu          sync.RWMutex
	log         []recorded
	offsets     map[string][]int
	subscribers map[string][]EventHandler
	pending     sync.WaitGroup
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		offsets:     make(map[string][]int),
		subscribers: make(map[string][]EventHandler),
	}
}

// AppendEvent versions the event within its stream and schedules delivery
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	const op = "events.AppendEvent"

	if streamID == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyStream)
	}

	s.mu.Lock()
	rec := recorded{
		kind:    event.Type(),
		stream:  streamID,
		payload: event.Data(),
		at:      event.Timestamp(),
		version: len(s.offsets[streamID]) + 1,
	}
	s.offsets[streamID] = append(s.offsets[streamID], len(s.log))
	s.log = append(s.log, rec)
	handlers := slices.Clone(s.subscribers[rec.kind])
	s.mu.Unlock()

	for _, h := range handlers {
		if !h.CanHandle(rec.kind) {
			continue
		}
		s.pending.Add(1)
		go s.deliver(h, rec)
	}
	return nil
}

// ReadEvents returns a stream from the given 1-based version on
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offsets := s.offsets[streamID]
	fromVersion = max(fromVersion, 1)
	if fromVersion > len(offsets) {
		return []Event{}, nil
	}

	out := make([]Event, 0, len(offsets)-fromVersion+1)
	for _, off := range offsets[fromVersion-1:] {
		out = append(out, s.log[off])
	}
	return out, nil
}

// ReadAllEvents returns every event from the given 0-based log position on
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromPosition = max(fromPosition, 0)
	if fromPosition >= len(s.log) {
		return []Event{}, nil
	}

	out := make([]Event, 0, len(s.log)-fromPosition)
	for _, rec := range s.log[fromPosition:] {
		out = append(out, rec)
	}
	return out, nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, eventType := range eventTypes {
		if !slices.Contains(s.subscribers[eventType], handler) {
			s.subscribers[eventType] = append(s.subscribers[eventType], handler)
		}
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for eventType, handlers := range s.subscribers {
		s.subscribers[eventType] = slices.DeleteFunc(handlers, func(h EventHandler) bool {
			return h == handler
		})
	}
	return nil
}

// Wait blocks until every notification started so far has been handled
func (s *InMemoryEventStore) Wait() {
	s.pending.Wait()
}

func (s *InMemoryEventStore) deliver(h EventHandler, e recorded) {
	defer s.pending.Done()

	if err := h.Handle(e); err != nil {
		logger.L().Error("event handler failed",
			logger.String("event_type", e.kind),
			logger.String("stream", e.stream),
			logger.Int("version", e.version),
			logger.ErrorF(err),
		)
	}
}
