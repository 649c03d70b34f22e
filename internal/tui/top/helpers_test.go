package top

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/disintegration/imaging"
	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/audio"
	"github.com/leg100/flipbook/internal/guestbook"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/leg100/flipbook/internal/session"
	"github.com/stretchr/testify/require"
)

// setup starts the TUI with a book of total pages, each served the same
// white image.
func setup(t *testing.T, total int) *teatest.TestModel {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(5, 6, color.White)))
	fetcher := preload.FetcherFunc(func(context.Context, string) ([]byte, error) {
		return buf.Bytes(), nil
	})

	pages, err := album.BuildPages(total, album.NewTemplate("images", "png"))
	require.NoError(t, err)

	logger := logging.NewLogger(logging.Options{Level: "debug"})
	sess, err := session.New(session.Options{
		Pages:       pages,
		Fetcher:     fetcher,
		Essential:   preload.EssentialSet{Leading: 2},
		SettleDelay: 10 * time.Millisecond,
		Logger:      logger,
	})
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	board := guestbook.NewMemory(logger)
	t.Cleanup(func() { board.Close() })

	player := audio.NewPlayer(nil, false, logger)
	t.Cleanup(func() { player.Close() })

	return StartTest(t, Options{
		Session:      sess,
		Board:        board,
		Player:       player,
		Logger:       logger,
		Title:        "Merry Story",
		WindowRadius: 2,
	}, 120, 40)
}

func waitFor(t *testing.T, tm *teatest.TestModel, s string) {
	t.Helper()

	waitForAll(t, tm, s)
}

// waitForAll waits until every string has been output. Output read while
// waiting is consumed, so strings drawn in the same frame must be waited
// for together.
func waitForAll(t *testing.T, tm *teatest.TestModel, ss ...string) {
	t.Helper()

	teatest.WaitFor(
		t, tm.Output(),
		func(bts []byte) bool {
			for _, s := range ss {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}
			return true
		},
		teatest.WithCheckInterval(time.Millisecond*100),
		teatest.WithDuration(time.Second*5),
	)
}
