package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"searchshell/internal/api"
)

const timestampLayout = time.RFC3339

// ErrNotFound is returned when no conversation matches the request.
var ErrNotFound = errors.New("conversation not found")

// Store persists conversation transcripts in a local sqlite database.
type Store struct {
	db *sql.DB
}

// Summary describes a saved conversation.
type Summary struct {
	ID        string
	Title     string
	Model     string
	Provider  string
	SavedAt   time.Time
	TurnCount int
}

// Transcript bundles a summary with the conversation's turns.
type Transcript struct {
	Summary Summary
	Turns   []api.Message
}

// Open initialises the store, creating the database file and its
// parent directory if necessary.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// Single connection avoids sqlite locking under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            model TEXT NOT NULL DEFAULT '',
            provider TEXT NOT NULL DEFAULT '',
            saved_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS turns (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            conversation_id TEXT NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation_id ON turns(conversation_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// Meta describes the conversation being saved.
type Meta struct {
	Title    string
	Model    string
	Provider string
}

// SaveConversation writes a snapshot of turns as a new conversation
// and returns its identifier. The title is derived from the first
// user turn when not provided. Saving an empty conversation is a
// no-op returning an empty id.
func (s *Store) SaveConversation(ctx context.Context, meta Meta, turns []api.Message) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = deriveTitle(turns)
	}

	id := uuid.NewString()
	savedAt := time.Now().UTC().Format(timestampLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations(id, title, model, provider, saved_at) VALUES (?, ?, ?, ?, ?)`,
		id, title, meta.Model, meta.Provider, savedAt); err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns(conversation_id, role, content) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare turn insert: %w", err)
	}
	defer stmt.Close()

	for _, turn := range turns {
		if _, err := stmt.ExecContext(ctx, id, turn.Role, turn.Content); err != nil {
			return "", fmt.Errorf("insert turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return id, nil
}

// RecentConversations lists saved conversations, newest first.
func (s *Store) RecentConversations(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.model, c.provider, c.saved_at, COUNT(t.id)
         FROM conversations c
         LEFT JOIN turns t ON t.conversation_id = c.id
         GROUP BY c.id
         ORDER BY c.saved_at DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var savedAt string
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Model, &sum.Provider, &savedAt, &sum.TurnCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		sum.SavedAt, _ = time.Parse(timestampLayout, savedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// LoadConversation returns a saved conversation with its turns in
// original order.
func (s *Store) LoadConversation(ctx context.Context, id string) (*Transcript, error) {
	var tr Transcript
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, model, provider, saved_at FROM conversations WHERE id = ?`, id).
		Scan(&tr.Summary.ID, &tr.Summary.Title, &tr.Summary.Model, &tr.Summary.Provider, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	tr.Summary.SavedAt, _ = time.Parse(timestampLayout, savedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM turns WHERE conversation_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var turn api.Message
		if err := rows.Scan(&turn.Role, &turn.Content); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		tr.Turns = append(tr.Turns, turn)
	}
	tr.Summary.TurnCount = len(tr.Turns)
	return &tr, rows.Err()
}

// LastConversation loads the most recently saved conversation.
func (s *Store) LastConversation(ctx context.Context) (*Transcript, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations ORDER BY saved_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find last conversation: %w", err)
	}
	return s.LoadConversation(ctx, id)
}

// deriveTitle takes the first user turn, truncated to a short label.
func deriveTitle(turns []api.Message) string {
	for _, turn := range turns {
		if turn.Role != api.RoleUser {
			continue
		}
		title := strings.TrimSpace(turn.Content)
		if line, _, found := strings.Cut(title, "\n"); found {
			title = line
		}
		if len(title) > 60 {
			title = title[:60]
		}
		if title != "" {
			return title
		}
	}
	return "Conversation " + time.Now().Format("2006-01-02 15:04")
}
