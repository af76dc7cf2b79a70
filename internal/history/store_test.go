package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"searchshell/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTurns() []api.Message {
	return []api.Message{
		{Role: api.RoleUser, Content: "what is sqlite?"},
		{Role: api.RoleAssistant, Content: "An embedded database."},
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	store := newTestStore(t)

	var mode string
	if err := store.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := store.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestSaveAndLoadConversation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveConversation(ctx, Meta{Model: "gpt-4o-mini", Provider: "openai"}, sampleTurns())
	if err != nil {
		t.Fatalf("SaveConversation() error: %v", err)
	}
	if id == "" {
		t.Fatal("SaveConversation() returned empty id")
	}

	tr, err := store.LoadConversation(ctx, id)
	if err != nil {
		t.Fatalf("LoadConversation() error: %v", err)
	}
	if tr.Summary.Title != "what is sqlite?" {
		t.Errorf("Title = %q, want title derived from first user turn", tr.Summary.Title)
	}
	if tr.Summary.Model != "gpt-4o-mini" || tr.Summary.Provider != "openai" {
		t.Errorf("Summary = %+v, model and provider not persisted", tr.Summary)
	}
	if len(tr.Turns) != 2 {
		t.Fatalf("loaded %d turns, want 2", len(tr.Turns))
	}
	if tr.Turns[0].Content != "what is sqlite?" || tr.Turns[1].Role != api.RoleAssistant {
		t.Errorf("turns out of order: %+v", tr.Turns)
	}
}

func TestSaveConversation_EmptyIsNoOp(t *testing.T) {
	store := newTestStore(t)

	id, err := store.SaveConversation(context.Background(), Meta{}, nil)
	if err != nil {
		t.Fatalf("SaveConversation() error: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty for empty conversation", id)
	}

	summaries, err := store.RecentConversations(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("RecentConversations() = %v, want none", summaries)
	}
}

func TestRecentConversations_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveConversation(ctx, Meta{Title: "older"}, sampleTurns()); err != nil {
		t.Fatal(err)
	}
	newID, err := store.SaveConversation(ctx, Meta{Title: "newer"}, sampleTurns())
	if err != nil {
		t.Fatal(err)
	}

	summaries, err := store.RecentConversations(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConversations() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].TurnCount != 2 {
		t.Errorf("TurnCount = %d, want 2", summaries[0].TurnCount)
	}

	last, err := store.LastConversation(ctx)
	if err != nil {
		t.Fatalf("LastConversation() error: %v", err)
	}
	if last.Summary.ID != newID {
		t.Errorf("LastConversation() = %q, want the newest save %q", last.Summary.ID, newID)
	}
}

func TestLoadConversation_NotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.LoadConversation(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadConversation() = %v, want ErrNotFound", err)
	}
	if _, err := store.LastConversation(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastConversation() = %v, want ErrNotFound", err)
	}
}

func TestDeriveTitle_TruncatesLongInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("q", 200)
	id, err := store.SaveConversation(ctx, Meta{}, []api.Message{{Role: api.RoleUser, Content: long}})
	if err != nil {
		t.Fatal(err)
	}

	tr, err := store.LoadConversation(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Summary.Title) != 60 {
		t.Errorf("Title length = %d, want truncated to 60", len(tr.Summary.Title))
	}
}
