package guestbook

import (
	"context"
	"slices"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
)

// Memory is a board held in memory, lost when the program exits.
type Memory struct {
	table  *resource.Table[Message]
	broker *pubsub.Broker[Message]

	now func() time.Time
}

func NewMemory(logger logging.Interface) *Memory {
	broker := pubsub.NewBroker[Message](logger)
	return &Memory{
		table:  resource.NewTable[Message](broker),
		broker: broker,
		now:    time.Now,
	}
}

func (m *Memory) List(context.Context) ([]Message, error) {
	msgs := m.table.List()
	slices.SortStableFunc(msgs, byCreatedAt)
	return msgs, nil
}

func (m *Memory) Create(_ context.Context, draft Draft) (Message, error) {
	draft, err := draft.Validate()
	if err != nil {
		return Message{}, err
	}
	id := resource.NewID(resource.Message)
	msg := Message{
		ID:        id.String(),
		Author:    draft.Author,
		Body:      draft.Body,
		CreatedAt: m.now(),
	}
	if err := m.table.Add(id, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (m *Memory) Subscribe(ctx context.Context) <-chan resource.Event[Message] {
	return m.broker.Subscribe(ctx)
}

func (m *Memory) Close() error {
	m.broker.Shutdown()
	return nil
}
