package guestbook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves a minimal issues API for a single repository.
type fakeGitHub struct {
	mu     sync.Mutex
	issues []map[string]any
	fail   bool
	// perPage splits listings into pages linked by a Link header.
	perPage int
}

func (f *fakeGitHub) add(title, body string) map[string]any {
	issue := map[string]any{
		"id":         1000 + len(f.issues),
		"number":     len(f.issues) + 1,
		"title":      title,
		"body":       body,
		"created_at": time.Date(2024, 1, 1, 0, len(f.issues), 0, 0, time.UTC).Format(time.RFC3339),
		"user":       map[string]any{"login": "octocat"},
	}
	f.issues = append(f.issues, issue)
	return issue
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	if r.URL.Path != "/repos/owner/book/issues" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("labels") != MessageLabel {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		issues := f.issues
		if f.perPage > 0 {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			page = max(page, 1)
			lo := min((page-1)*f.perPage, len(issues))
			hi := min(lo+f.perPage, len(issues))
			if hi < len(issues) {
				q := r.URL.Query()
				q.Set("page", strconv.Itoa(page+1))
				next := "http://" + r.Host + r.URL.Path + "?" + q.Encode()
				w.Header().Set("Link", `<`+next+`>; rel="next", <`+next+`>; rel="last"`)
			}
			issues = issues[lo:hi]
		}
		json.NewEncoder(w).Encode(issues)
	case http.MethodPost:
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var params struct {
			Title  string   `json:"title"`
			Body   string   `json:"body"`
			Labels []string `json:"labels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(f.add(params.Title, params.Body))
	}
}

func newTestGitHub(t *testing.T, token string) (*GitHub, *fakeGitHub) {
	t.Helper()

	fake := &fakeGitHub{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	board, err := NewGitHub("owner/book", token, logging.Discard)
	require.NoError(t, err)
	board.BaseURL = srv.URL
	board.PollInterval = 10 * time.Millisecond
	return board, fake
}

func TestNewGitHub(t *testing.T) {
	for _, invalid := range []string{"", "owner", "owner/", "/book", "a/b/c"} {
		_, err := NewGitHub(invalid, "", logging.Discard)
		assert.Error(t, err, invalid)
	}
}

func TestGitHub(t *testing.T) {
	board, _ := newTestGitHub(t, "secret")
	testBoard(t, board)
}

func TestGitHub_List(t *testing.T) {
	board, fake := newTestGitHub(t, "")
	fake.add("Amy", "Lovely photos")
	fake.add("", "Anonymous note")
	pr := fake.add("Bump deps", "")
	pr["pull_request"] = map[string]any{}

	got, err := board.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Message{
		ID:        "1",
		Author:    "Amy",
		Body:      "Lovely photos",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, got[0])
	// falls back to the issue author's login
	assert.Equal(t, "octocat", got[1].Author)

	t.Run("api error", func(t *testing.T) {
		fake.mu.Lock()
		fake.fail = true
		fake.mu.Unlock()

		_, err := board.List(context.Background())
		assert.ErrorContains(t, err, "502")
	})
}

func TestGitHub_ListFollowsPages(t *testing.T) {
	board, fake := newTestGitHub(t, "")
	fake.perPage = 2
	for _, author := range []string{"Amy", "Bob", "Cat", "Dan", "Eve"} {
		fake.add(author, "hello")
	}

	got, err := board.List(context.Background())
	require.NoError(t, err)

	authors := make([]string, len(got))
	for i, msg := range got {
		authors[i] = msg.Author
	}
	assert.Equal(t, []string{"Amy", "Bob", "Cat", "Dan", "Eve"}, authors)
}

func TestNextPage(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, "", nextPage(h))

	h.Set("Link", `<https://api.github.com/issues?page=3>; rel="next", <https://api.github.com/issues?page=5>; rel="last"`)
	assert.Equal(t, "https://api.github.com/issues?page=3", nextPage(h))

	h.Set("Link", `<https://api.github.com/issues?page=1>; rel="first", <https://api.github.com/issues?page=4>; rel="prev"`)
	assert.Equal(t, "", nextPage(h))
}

func TestGitHub_ReadOnly(t *testing.T) {
	board, _ := newTestGitHub(t, "")

	_, err := board.Create(context.Background(), Draft{Author: "Amy", Body: "hi"})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestGitHub_PollsForNewMessages(t *testing.T) {
	board, fake := newTestGitHub(t, "")
	fake.add("Amy", "Lovely photos")

	_, err := board.List(context.Background())
	require.NoError(t, err)

	sub := board.Subscribe(context.Background())
	t.Cleanup(func() { board.Close() })

	fake.mu.Lock()
	fake.add("Bob", "Created on github.com")
	fake.mu.Unlock()

	select {
	case ev := <-sub:
		assert.Equal(t, "Bob", ev.Payload.Author)
	case <-time.After(5 * time.Second):
		t.Fatal("expected new message to be published")
	}
}
