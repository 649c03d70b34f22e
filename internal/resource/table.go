package resource

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
)

// Publisher publishes events about rows in a table.
type Publisher[T any] interface {
	Publish(EventType, T)
}

// Table is an in-memory database table that emits events upon changes.
type Table[T any] struct {
	rows map[ID]T
	mu   sync.RWMutex

	pub Publisher[T]
}

func NewTable[T any](pub Publisher[T]) *Table[T] {
	return &Table[T]{
		rows: make(map[ID]T),
		pub:  pub,
	}
}

// Add adds a row, returning ErrExists if a row with the same ID is already
// present.
func (t *Table[T]) Add(id ID, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; ok {
		return fmt.Errorf("%s: %w", id, ErrExists)
	}
	t.rows[id] = row
	t.pub.Publish(CreatedEvent, row)
	return nil
}

// List returns all rows in no particular order.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return maps.Values(t.rows)
}
