package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher[T any] struct {
	events []Event[T]
}

func (f *fakePublisher[T]) Publish(t EventType, payload T) {
	f.events = append(f.events, NewEvent(t, payload))
}

func TestTable(t *testing.T) {
	pub := &fakePublisher[string]{}
	tbl := NewTable[string](pub)
	id := NewID(Message)

	require.NoError(t, tbl.Add(id, "hello"))
	assert.ErrorIs(t, tbl.Add(id, "again"), ErrExists)
	require.NoError(t, tbl.Add(NewID(Message), "world"))

	assert.ElementsMatch(t, []string{"hello", "world"}, tbl.List())

	require.Len(t, pub.events, 2)
	for _, ev := range pub.events {
		assert.Equal(t, CreatedEvent, ev.Type)
	}
	assert.Equal(t, "hello", pub.events[0].Payload)
}
