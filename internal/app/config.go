package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pagination"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/leg100/flipbook/internal/session"
	"github.com/leg100/flipbook/internal/tui/book"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"
)

// Guestbook backends.
const (
	memoryBackend = "memory"
	sqliteBackend = "sqlite"
	githubBackend = "github"
	noBackend     = "none"
)

type config struct {
	Root          string
	ImageDir      string
	ImageExt      string
	ImageTemplate string
	BaseURL       string
	TotalImages   int
	Title         string

	HeroPage       int
	EssentialPages int
	ChunkSize      int
	ChunkDelay     time.Duration
	PreloadRadius  int
	WindowRadius   int
	Compact        bool
	FlipDuration   time.Duration
	Fallback       string

	Guestbook   string
	GuestbookDB string
	GitHubRepo  string
	GitHubToken string

	AudioCmd  string
	AudioLoop bool

	Debug   bool
	Version bool

	loggingOptions logging.Options
}

// set config in order of precedence:
// 1. flags > 2. env vars (including those in a .env file) > 3. config file
func parse(stderr io.Writer, args []string) (config, error) {
	var cfg config

	home, err := os.UserHomeDir()
	if err != nil {
		return config{}, fmt.Errorf("retrieving user's home directory: %w", err)
	}
	defaultConfigFile := filepath.Join(home, ".flipbook.yaml")
	defaultDatabase := filepath.Join(home, ".flipbook.db")

	// Variables already set in the environment take precedence over the .env
	// file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, fmt.Errorf("loading .env file: %w", err)
	}

	fs := ff.NewFlagSet("flipbook")
	fs.StringVar(&cfg.Root, 'r', "root", ".", "Directory image locators are relative to.")
	fs.StringVar(&cfg.ImageDir, 0, "image-dir", "images/webp", "Directory containing the images, one per page, named 1.<ext>, 2.<ext>, etc.")
	fs.StringVar(&cfg.ImageExt, 0, "image-ext", "webp", "File extension of the images.")
	fs.StringVar(&cfg.ImageTemplate, 0, "image-template", "", "Locator template containing a {n} placeholder for the page number. Overrides --image-dir and --image-ext.")
	fs.StringVar(&cfg.BaseURL, 'u', "base-url", "", "Retrieve images from this URL rather than the filesystem.")
	fs.IntVar(&cfg.TotalImages, 'n', "total-images", 0, "Number of pages. Zero counts the images in --image-dir.")
	fs.StringVar(&cfg.Title, 0, "title", "Merry Story", "Title of the book.")

	fs.IntVar(&cfg.HeroPage, 0, "hero-page", 14, "Page number of the hero image, preloaded before the book is shown. Zero for none.")
	fs.IntVar(&cfg.EssentialPages, 0, "essential-pages", 4, "Number of leading pages preloaded before the book is shown.")
	fs.IntVar(&cfg.ChunkSize, 0, "chunk-size", preload.DefaultChunkSize, "Number of images preloaded concurrently in the background.")
	fs.DurationVar(&cfg.ChunkDelay, 0, "chunk-delay", 100*time.Millisecond, "Pause between each chunk of background preloading.")
	fs.IntVar(&cfg.PreloadRadius, 0, "preload-radius", session.DefaultPreloadRadius, "Number of pages either side of the current page preloaded upon flipping.")
	fs.IntVar(&cfg.WindowRadius, 0, "window-radius", book.DefaultWindowRadius, "Number of pages either side of the current page kept rendered.")
	fs.BoolVar(&cfg.Compact, 0, "compact", "Use smaller preload and render windows, for small terminals.")
	fs.DurationVar(&cfg.FlipDuration, 0, "flip-duration", pagination.DefaultSettleDelay, "Duration of a page flip.")
	fs.StringVar(&cfg.Fallback, 0, "fallback", preload.DefaultFallback, "Placeholder locator shown in place of images that fail to load.")

	{
		usage := fmt.Sprintf("Guestbook backend (valid: %s).", strings.Join(backends(), ","))
		fs.StringEnumVar(&cfg.Guestbook, 'g', "guestbook", usage, backends()...)
	}
	fs.StringVar(&cfg.GuestbookDB, 0, "guestbook-db", defaultDatabase, "Path to the sqlite guestbook database.")
	fs.StringVar(&cfg.GitHubRepo, 0, "github-repo", "", "GitHub repository, owner/name, whose issues labelled 'message' form the guestbook.")
	fs.StringVar(&cfg.GitHubToken, 0, "github-token", "", "GitHub token for posting to the guestbook. Without one the guestbook is read-only.")

	fs.StringVar(&cfg.AudioCmd, 'a', "audio-cmd", "", "Command playing the background music, e.g. 'mpv --no-video music.mp3'.")
	fs.BoolVar(&cfg.AudioLoop, 0, "audio-loop", "Restart the music whenever it ends.")

	fs.BoolVar(&cfg.Debug, 'd', "debug", "Log bubbletea messages to messages.log")
	fs.BoolVar(&cfg.Version, 'v', "version", "Print version.")
	_ = fs.String('c', "config", defaultConfigFile, "Path to config file.")

	{
		usage := fmt.Sprintf("Logging level (valid: %s).", strings.Join(logging.ValidLevels(), ","))
		fs.StringEnumVar(&cfg.loggingOptions.Level, 'l', "log-level", usage, logging.ValidLevels()...)
	}

	err = ff.Parse(fs, args,
		ff.WithEnvVarPrefix("FLIPBOOK"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
		ff.WithConfigAllowMissingFile(),
	)
	if err != nil {
		// ff.Parse returns an error if there is an error or if -h/--help is
		// passed; in either case print flag usage in addition to error message.
		fmt.Fprintln(stderr, ffhelp.Flags(fs))
		return config{}, err
	}

	if cfg.Compact {
		cfg.PreloadRadius = min(cfg.PreloadRadius, 1)
		cfg.WindowRadius = min(cfg.WindowRadius, 1)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func backends() []string {
	return []string{memoryBackend, sqliteBackend, githubBackend, noBackend}
}

func (cfg config) validate() error {
	switch {
	case cfg.TotalImages < 0:
		return errors.New("--total-images must not be negative")
	case cfg.TotalImages == 0 && cfg.BaseURL != "":
		return errors.New("--total-images must be set when retrieving images from --base-url")
	case cfg.ChunkSize < 1:
		return errors.New("--chunk-size must be at least 1")
	case cfg.Guestbook == githubBackend && cfg.GitHubRepo == "":
		return errors.New("--github-repo must be set for the github guestbook")
	}
	return nil
}
