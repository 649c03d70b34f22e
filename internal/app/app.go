// Package app is the main entrypoint into the application, responsible for
// configuring and starting the book, its services and the TUI.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/audio"
	"github.com/leg100/flipbook/internal/guestbook"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/leg100/flipbook/internal/session"
	"github.com/leg100/flipbook/internal/tui/top"
	"github.com/leg100/flipbook/internal/version"
	"github.com/peterbourgon/ff/v4"
	"go.uber.org/multierr"
)

const logFile = "flipbook.log"

// Start the app.
func Start(stdout, stderr io.Writer, args []string) (err error) {
	// Parse configuration from env vars, flags and config file
	cfg, err := parse(stderr, args)
	if errors.Is(err, ff.ErrHelp) {
		return nil
	} else if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// Print out version if requested
	if cfg.Version {
		fmt.Fprintln(stdout, version.Version)
		return nil
	}

	// Log to the logs page and to a file, the latter surviving the TUI.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	cfg.loggingOptions.AdditionalWriters = append(cfg.loggingOptions.AdditionalWriters, f)
	logger := logging.NewLogger(cfg.loggingOptions)
	defer logger.Shutdown()
	slog.SetDefault(logger.Slog())

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	return top.Start(top.Options{
		Session:      a.session,
		Board:        a.board,
		Player:       a.player,
		Logger:       logger,
		Title:        cfg.Title,
		WindowRadius: cfg.WindowRadius,
		Debug:        cfg.Debug,
	})
}

// app holds the services making up the application.
type app struct {
	session *session.Session
	board   guestbook.Board
	player  *audio.Player
}

func newApp(cfg config, logger logging.Interface) (*app, error) {
	pages, err := buildPages(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("built book", "pages", len(pages), "first", pages[0].Locator)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(session.Options{
		Pages:   pages,
		Fetcher: fetcher,
		Essential: preload.EssentialSet{
			Hero:    cfg.HeroPage,
			Leading: cfg.EssentialPages,
		},
		PreloadRadius: cfg.PreloadRadius,
		Fallback:      cfg.Fallback,
		ChunkSize:     cfg.ChunkSize,
		ChunkDelay:    cfg.ChunkDelay,
		SettleDelay:   cfg.FlipDuration,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	board, err := newBoard(cfg, logger)
	if err != nil {
		sess.Close()
		return nil, err
	}
	return &app{
		session: sess,
		board:   board,
		player:  audio.NewPlayer(strings.Fields(cfg.AudioCmd), cfg.AudioLoop, logger),
	}, nil
}

func buildPages(cfg config) ([]album.Page, error) {
	tmpl := album.NewTemplate(cfg.ImageDir, cfg.ImageExt)
	if cfg.ImageTemplate != "" {
		var err error
		tmpl, err = album.ParseTemplate(cfg.ImageTemplate)
		if err != nil {
			return nil, fmt.Errorf("parsing image template: %w", err)
		}
	}
	total := cfg.TotalImages
	if total == 0 {
		var err error
		total, err = album.Discover(filepath.Join(cfg.Root, cfg.ImageDir), cfg.ImageExt)
		if err != nil {
			return nil, err
		}
	}
	pages, err := album.BuildPages(total, tmpl)
	if err != nil {
		return nil, fmt.Errorf("building pages from %s: %w", tmpl, err)
	}
	return pages, nil
}

func newFetcher(cfg config) (preload.Fetcher, error) {
	if cfg.BaseURL != "" {
		return preload.NewHTTPFetcher(cfg.BaseURL)
	}
	return preload.FileFetcher{Root: cfg.Root}, nil
}

func newBoard(cfg config, logger logging.Interface) (guestbook.Board, error) {
	switch cfg.Guestbook {
	case sqliteBackend:
		board, err := guestbook.OpenSQLite(cfg.GuestbookDB, logger)
		if err != nil {
			return nil, err
		}
		return board, nil
	case githubBackend:
		board, err := guestbook.NewGitHub(cfg.GitHubRepo, cfg.GitHubToken, logger)
		if err != nil {
			return nil, err
		}
		return board, nil
	case noBackend:
		return nil, nil
	default:
		return guestbook.NewMemory(logger), nil
	}
}

// close the services, stopping the session first so that nothing is
// preloaded whilst the rest are closed.
func (a *app) close() error {
	a.session.Close()
	err := a.player.Close()
	if a.board != nil {
		err = multierr.Append(err, a.board.Close())
	}
	return err
}
