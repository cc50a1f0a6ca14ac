package events

import (
	"errors"
	"slices"
	"time"
)

// ErrEmptyStream is returned when an event is appended without a stream id
var ErrEmptyStream = errors.New("event stream id is empty")

// Event is a fact about one BOM that has already been committed
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	// Version is the 1-based position within the stream
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to per-BOM streams and fans them out to
// subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// recorded is the store's own copy of an event
type recorded struct {
	kind    string
	stream  string
	payload interface{}
	at      time.Time
	version int
}

func (e recorded) Type() string         { return e.kind }
func (e recorded) StreamID() string     { return e.stream }
func (e recorded) Data() interface{}    { return e.payload }
func (e recorded) Timestamp() time.Time { return e.at }
func (e recorded) Version() int         { return e.version }

// NewEvent creates an unversioned event; the store assigns the version on
// append
func NewEvent(eventType, streamID string, data interface{}) Event {
	return recorded{
		kind:    eventType,
		stream:  streamID,
		payload: data,
		at:      time.Now().UTC(),
	}
}

// HandlerFunc adapts a function to an EventHandler for the given types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error { return h.Fn(event) }

func (h *HandlerFunc) CanHandle(eventType string) bool {
	return slices.Contains(h.Types, eventType)
}
