package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/paperlab/oshiete/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testPaper(filename string) *models.Paper {
	return &models.Paper{Filename: filename, Chars: 500, UploadedAt: time.Now().UTC()}
}

func TestRecordAndReadBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordUpload(ctx, "s1", testPaper("paper.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordMessage(ctx, "s1", models.UserMessage("What is X?")); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordMessage(ctx, "s1", models.AssistantMessage("X is...")); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.SessionMessages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "What is X?" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}

	n, err := store.CountSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("sessions = %d", n)
	}
}

func TestRecordUpload_replaceClearsMessages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordUpload(ctx, "s1", testPaper("a.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordMessage(ctx, "s1", models.UserMessage("about A")); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordUpload(ctx, "s1", testPaper("b.pdf")); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.SessionMessages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("replacement left %d residual messages", len(msgs))
	}
	n, _ := store.CountSessions(ctx)
	if n != 1 {
		t.Errorf("replace should not add a session row, got %d", n)
	}
}

func TestClearMessages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordUpload(ctx, "s1", testPaper("a.pdf")); err != nil {
		t.Fatal(err)
	}
	_ = store.RecordMessage(ctx, "s1", models.UserMessage("hi"))
	_ = store.RecordMessage(ctx, "s1", models.AssistantMessage("hello"))

	if err := store.ClearMessages(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	msgs, err := store.SessionMessages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("clear left %d messages", len(msgs))
	}
}

func TestSessionMessages_isolatedPerSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.RecordUpload(ctx, "s1", testPaper("a.pdf"))
	_ = store.RecordUpload(ctx, "s2", testPaper("b.pdf"))
	_ = store.RecordMessage(ctx, "s1", models.UserMessage("for s1"))
	_ = store.RecordMessage(ctx, "s2", models.UserMessage("for s2"))

	msgs, err := store.SessionMessages(ctx, "s2")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "for s2" {
		t.Errorf("cross-session leak: %+v", msgs)
	}
}
