package guestbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	author     TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_created_at ON messages (created_at);
`

// SQLite is a board persisted to a SQLite database file. Subscribers are
// notified of messages created through this board only.
type SQLite struct {
	conn *sqlite.Conn
	// sqlite connections must not be used concurrently
	mu     sync.Mutex
	broker *pubsub.Broker[Message]

	now func() time.Time
}

// OpenSQLite opens the database at path, creating it and its schema if
// necessary.
func OpenSQLite(path string, logger logging.Interface) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("opening guestbook database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating guestbook schema: %w", err)
	}
	return &SQLite{
		conn:   conn,
		broker: pubsub.NewBroker[Message](logger),
		now:    time.Now,
	}, nil
}

func (s *SQLite) List(ctx context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	var msgs []Message
	err := sqlitex.Execute(s.conn,
		`SELECT id, author, body, created_at FROM messages ORDER BY created_at, rowid`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			msgs = append(msgs, Message{
				ID:        stmt.ColumnText(0),
				Author:    stmt.ColumnText(1),
				Body:      stmt.ColumnText(2),
				CreatedAt: time.Unix(0, stmt.ColumnInt64(3)),
			})
			return nil
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

func (s *SQLite) Create(ctx context.Context, draft Draft) (Message, error) {
	draft, err := draft.Validate()
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:        resource.NewID(resource.Message).String(),
		Author:    draft.Author,
		Body:      draft.Body,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.conn.SetInterrupt(ctx.Done())
	err = sqlitex.Execute(s.conn,
		`INSERT INTO messages (id, author, body, created_at) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{msg.ID, msg.Author, msg.Body, msg.CreatedAt.UnixNano()}},
	)
	s.conn.SetInterrupt(nil)
	s.mu.Unlock()
	if err != nil {
		return Message{}, fmt.Errorf("creating message: %w", err)
	}

	s.broker.Publish(resource.CreatedEvent, msg)
	return msg, nil
}

func (s *SQLite) Subscribe(ctx context.Context) <-chan resource.Event[Message] {
	return s.broker.Subscribe(ctx)
}

func (s *SQLite) Close() error {
	s.broker.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.Close()
}
