// Package guestbook is the message board visitors of a book leave messages
// on. Storage is delegated to a Board; any backend satisfying Board is
// interchangeable.
package guestbook

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/leg100/flipbook/internal/resource"
)

const (
	MaxAuthorLength = 64
	MaxBodyLength   = 2000
)

var (
	ErrEmptyAuthor = errors.New("author must not be empty")
	ErrEmptyBody   = errors.New("message must not be empty")
	ErrTooLong     = errors.New("message too long")
)

// Message is an entry on the board.
type Message struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Draft is a message yet to be created.
type Draft struct {
	Author string
	Body   string
}

// Validate trims surrounding whitespace and checks the draft can be posted.
func (d Draft) Validate() (Draft, error) {
	d.Author = strings.TrimSpace(d.Author)
	d.Body = strings.TrimSpace(d.Body)
	switch {
	case d.Author == "":
		return d, ErrEmptyAuthor
	case d.Body == "":
		return d, ErrEmptyBody
	case len(d.Author) > MaxAuthorLength, len(d.Body) > MaxBodyLength:
		return d, ErrTooLong
	}
	return d, nil
}

// Board is the message board capability.
type Board interface {
	// List messages, oldest first.
	List(ctx context.Context) ([]Message, error)
	// Create a message.
	Create(ctx context.Context, draft Draft) (Message, error)
	// Subscribe to messages as they are created, including those created by
	// others, as far as the backend permits.
	Subscribe(ctx context.Context) <-chan resource.Event[Message]
	// Close releases the board's resources and closes subscriptions.
	Close() error
}

func byCreatedAt(a, b Message) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}
