package guestbook

import (
	"context"
	"testing"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Validate(t *testing.T) {
	got, err := Draft{Author: "  Amy ", Body: "\tCongratulations!\n"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, Draft{Author: "Amy", Body: "Congratulations!"}, got)

	_, err = Draft{Author: " ", Body: "hi"}.Validate()
	assert.ErrorIs(t, err, ErrEmptyAuthor)

	_, err = Draft{Author: "Amy", Body: ""}.Validate()
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = Draft{Author: "Amy", Body: string(make([]byte, MaxBodyLength+1))}.Validate()
	assert.Error(t, err)
}

// testBoard exercises the behaviour common to every board.
func testBoard(t *testing.T, board Board) {
	t.Helper()
	ctx := context.Background()

	sub := board.Subscribe(ctx)

	first, err := board.Create(ctx, Draft{Author: "Amy", Body: "Lovely photos"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Amy", first.Author)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := board.Create(ctx, Draft{Author: "Bob", Body: "Happy anniversary"})
	require.NoError(t, err)

	_, err = board.Create(ctx, Draft{Author: "Bob"})
	assert.ErrorIs(t, err, ErrEmptyBody)

	got, err := board.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, "Happy anniversary", got[1].Body)

	ev := <-sub
	assert.Equal(t, resource.CreatedEvent, ev.Type)
	assert.Equal(t, first.ID, ev.Payload.ID)
	ev = <-sub
	assert.Equal(t, second.ID, ev.Payload.ID)

	require.NoError(t, board.Close())
	_, ok := <-sub
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	board := NewMemory(logging.Discard)

	// ensure distinct, increasing timestamps
	now := time.Now()
	board.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	testBoard(t, board)
}
