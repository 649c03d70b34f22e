package logging

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/leg100/flipbook/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLevels(t *testing.T) {
	assert.Equal(t, []string{"info", "debug", "error", "warn"}, ValidLevels())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", AdditionalWriters: []io.Writer{&buf}})

	sub := logger.Subscribe(context.Background())

	logger.Info("image failed to load", "locator", "/images/3.webp")
	logger.Debug("preloaded chunk", "size", 5)

	msgs := logger.List()
	require.Len(t, msgs, 2)

	assert.Equal(t, "INFO", msgs[0].Level)
	assert.Equal(t, "image failed to load", msgs[0].Message)
	assert.Equal(t, []Attr{{Key: "locator", Value: "/images/3.webp"}}, msgs[0].Attributes)
	assert.Equal(t, uint(0), msgs[0].Serial)
	assert.Equal(t, uint(1), msgs[1].Serial)

	ev := <-sub
	assert.Equal(t, resource.CreatedEvent, ev.Type)
	assert.Equal(t, "image failed to load", ev.Payload.Message)

	// records are also written to the additional writer
	assert.Contains(t, buf.String(), "preloaded chunk")

	t.Run("filters by level", func(t *testing.T) {
		logger := NewLogger(Options{Level: "warn"})
		logger.Info("ignored")
		logger.Warn("kept")
		require.Len(t, logger.List(), 1)
		assert.Equal(t, "kept", logger.List()[0].Message)
	})
}

func TestBySerialDesc(t *testing.T) {
	assert.Equal(t, 1, BySerialDesc(Message{Serial: 1}, Message{Serial: 2}))
	assert.Equal(t, -1, BySerialDesc(Message{Serial: 2}, Message{Serial: 1}))
}
