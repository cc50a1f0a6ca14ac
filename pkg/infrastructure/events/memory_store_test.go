package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventStoreStreams(t *testing.T) {
	store := NewInMemoryEventStore()
	bomA := StreamForBOM(uuid.New())
	bomB := StreamForBOM(uuid.New())

	require.NoError(t, store.AppendEvent(bomA, NewEvent(BOMScaledEvent, bomA, BOMScaled{ItemCount: 3})))
	require.NoError(t, store.AppendEvent(bomB, NewEvent(ByProductRecordedEvent, bomB, ByProductRecorded{})))
	require.NoError(t, store.AppendEvent(bomA, NewEvent(ExpectedYieldUpdatedEvent, bomA, ExpectedYieldUpdated{})))

	streamA, err := store.ReadEvents(bomA, 0)
	require.NoError(t, err)
	require.Len(t, streamA, 2)
	assert.Equal(t, 1, streamA[0].Version())
	assert.Equal(t, 2, streamA[1].Version())
	assert.Equal(t, BOMScaledEvent, streamA[0].Type())
	assert.Equal(t, 3, streamA[0].Data().(BOMScaled).ItemCount)

	tail, err := store.ReadEvents(bomA, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	none, err := store.ReadEvents("missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryEventStoreSubscribers(t *testing.T) {
	store := NewInMemoryEventStore()

	var mu sync.Mutex
	var seen []string
	handler := &HandlerFunc{
		Types: []string{BOMScaledEvent},
		Fn: func(e Event) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, e.Type())
			return errors.New("handler errors are only logged")
		},
	}
	require.NoError(t, store.Subscribe([]string{BOMScaledEvent}, handler))

	stream := StreamForBOM(uuid.New())
	require.NoError(t, store.AppendEvent(stream, NewEvent(BOMScaledEvent, stream, nil)))
	require.NoError(t, store.AppendEvent(stream, NewEvent(ByProductRecordedEvent, stream, nil)))
	store.Wait()

	mu.Lock()
	assert.Equal(t, []string{BOMScaledEvent}, seen)
	mu.Unlock()

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent(stream, NewEvent(BOMScaledEvent, stream, nil)))
	store.Wait()

	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()
}

func TestInMemoryEventStoreAppendValidation(t *testing.T) {
	store := NewInMemoryEventStore()

	err := store.AppendEvent("", NewEvent(BOMScaledEvent, "", nil))
	assert.ErrorIs(t, err, ErrEmptyStream)

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInMemoryEventStoreSubscribeTwice(t *testing.T) {
	store := NewInMemoryEventStore()

	var mu sync.Mutex
	calls := 0
	handler := &HandlerFunc{
		Types: []string{ExpectedYieldUpdatedEvent},
		Fn: func(Event) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return nil
		},
	}
	require.NoError(t, store.Subscribe([]string{ExpectedYieldUpdatedEvent}, handler))
	require.NoError(t, store.Subscribe([]string{ExpectedYieldUpdatedEvent}, handler))

	stream := StreamForBOM(uuid.New())
	require.NoError(t, store.AppendEvent(stream, NewEvent(ExpectedYieldUpdatedEvent, stream, ExpectedYieldUpdated{})))
	store.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
