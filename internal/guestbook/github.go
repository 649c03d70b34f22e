package guestbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
)

const (
	// MessageLabel labels the issues that are guestbook messages.
	MessageLabel = "message"

	defaultGitHubAPI    = "https://api.github.com"
	DefaultPollInterval = 30 * time.Second
)

var ErrReadOnly = errors.New("guestbook is read-only: no github token configured")

// GitHub is a board backed by the issues of a GitHub repository: every open
// issue labelled "message" is a message, the issue title its author and the
// issue body its text. Messages created elsewhere are picked up by polling.
type GitHub struct {
	Owner string
	Repo  string
	// Token authenticates requests. Without it the board is read-only.
	Token        string
	BaseURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client

	logger logging.Interface
	broker *pubsub.Broker[Message]

	mu   sync.Mutex
	seen map[string]bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewGitHub constructs a board from a repository of the form owner/name.
func NewGitHub(repo, token string, logger logging.Interface) (*GitHub, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid github repository %q: must be owner/name", repo)
	}
	return &GitHub{
		Owner:        owner,
		Repo:         name,
		Token:        token,
		BaseURL:      defaultGitHubAPI,
		PollInterval: DefaultPollInterval,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		broker:       pubsub.NewBroker[Message](logger),
		seen:         make(map[string]bool),
	}, nil
}

type githubIssue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

func (i githubIssue) message() Message {
	author := i.Title
	if author == "" {
		author = i.User.Login
	}
	return Message{
		ID:        fmt.Sprintf("%d", i.Number),
		Author:    author,
		Body:      i.Body,
		CreatedAt: i.CreatedAt,
	}
}

func (g *GitHub) issuesURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", strings.TrimSuffix(g.BaseURL, "/"), g.Owner, g.Repo)
}

func (g *GitHub) do(req *http.Request, wantStatus int, dst any) (http.Header, error) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("github api error: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return nil, fmt.Errorf("decoding github response: %w", err)
	}
	return resp.Header, nil
}

// nextPage returns the URL of the next page of results linked from the
// response headers, or an empty string on the last page.
func nextPage(h http.Header) string {
	for _, link := range strings.Split(h.Get("Link"), ",") {
		target, params, ok := strings.Cut(link, ";")
		if !ok {
			continue
		}
		for _, param := range strings.Split(params, ";") {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(target), "<>")
			}
		}
	}
	return ""
}

// List messages. Messages listed are not subsequently published to
// subscribers.
func (g *GitHub) List(ctx context.Context) ([]Message, error) {
	msgs, err := g.list(ctx)
	if err != nil {
		return nil, err
	}
	g.markSeen(msgs...)
	return msgs, nil
}

func (g *GitHub) list(ctx context.Context) ([]Message, error) {
	var msgs []Message
	url := g.issuesURL() + "?state=open&labels=" + MessageLabel + "&per_page=100&sort=created&direction=asc"
	for url != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		var issues []githubIssue
		header, err := g.do(req, http.StatusOK, &issues)
		if err != nil {
			return nil, fmt.Errorf("listing messages: %w", err)
		}
		for _, issue := range issues {
			// The issues API includes pull requests.
			if issue.PullRequest != nil {
				continue
			}
			msgs = append(msgs, issue.message())
		}
		url = nextPage(header)
	}
	return msgs, nil
}

func (g *GitHub) Create(ctx context.Context, draft Draft) (Message, error) {
	draft, err := draft.Validate()
	if err != nil {
		return Message{}, err
	}
	if g.Token == "" {
		return Message{}, ErrReadOnly
	}
	body, err := json.Marshal(map[string]any{
		"title":  draft.Author,
		"body":   draft.Body,
		"labels": []string{MessageLabel},
	})
	if err != nil {
		return Message{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.issuesURL(), bytes.NewReader(body))
	if err != nil {
		return Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var issue githubIssue
	if _, err := g.do(req, http.StatusCreated, &issue); err != nil {
		return Message{}, fmt.Errorf("creating message: %w", err)
	}
	msg := issue.message()
	g.publishNew(msg)
	return msg, nil
}

// markSeen records messages as seen, returning those not seen before.
func (g *GitHub) markSeen(msgs ...Message) (unseen []Message) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, msg := range msgs {
		if !g.seen[msg.ID] {
			g.seen[msg.ID] = true
			unseen = append(unseen, msg)
		}
	}
	return unseen
}

func (g *GitHub) publishNew(msgs ...Message) {
	for _, msg := range g.markSeen(msgs...) {
		g.broker.Publish(resource.CreatedEvent, msg)
	}
}

// Subscribe to new messages. The first subscription starts polling the
// repository for messages created elsewhere.
func (g *GitHub) Subscribe(ctx context.Context) <-chan resource.Event[Message] {
	sub := g.broker.Subscribe(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done == nil {
		var pollCtx context.Context
		pollCtx, g.cancel = context.WithCancel(context.Background())
		g.done = make(chan struct{})
		go g.poll(pollCtx)
	}
	return sub
}

func (g *GitHub) poll(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		msgs, err := g.list(ctx)
		if err != nil {
			if ctx.Err() == nil {
				g.logger.Error("polling guestbook", "error", err)
			}
			continue
		}
		g.publishNew(msgs...)
	}
}

func (g *GitHub) Close() error {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	g.broker.Shutdown()
	return nil
}
