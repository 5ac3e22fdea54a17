package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testEntry(id, source string, ts time.Time, success bool) Entry {
	return Entry{
		ID:           id,
		Source:       source,
		SourceFormat: "docx",
		TargetFormat: "pdf",
		OutputPath:   source + ".pdf",
		Timestamp:    ts,
		Success:      success,
	}
}

// runStoreTests exercises the Store contract against any implementation.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("list preserves append order", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			e := testEntry(fmt.Sprintf("id-%d", i), "report.docx", base.Add(time.Duration(i)*time.Minute), true)
			if err := s.Append(ctx, e); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
		}
		entries, err := s.List(ctx, "report.docx")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("List() returned %d entries, want 3", len(entries))
		}
		for i, e := range entries {
			if want := fmt.Sprintf("id-%d", i); e.ID != want {
				t.Errorf("entries[%d].ID = %q, want %q", i, e.ID, want)
			}
		}
	})

	t.Run("list is scoped per document", func(t *testing.T) {
		s := newStore(t)
		if err := s.Append(ctx, testEntry("a", "one.docx", base, true)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := s.Append(ctx, testEntry("b", "two.docx", base, true)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		entries, err := s.List(ctx, "one.docx")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 1 || entries[0].ID != "a" {
			t.Fatalf("List(one.docx) = %+v, want single entry a", entries)
		}
	})

	t.Run("latest returns most recent entry", func(t *testing.T) {
		s := newStore(t)
		if err := s.Append(ctx, testEntry("old", "report.docx", base, true)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := s.Append(ctx, testEntry("new", "report.docx", base.Add(time.Hour), false)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		entry, ok, err := s.Latest(ctx, "report.docx")
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if !ok {
			t.Fatal("Latest() ok = false, want true")
		}
		if entry.ID != "new" || entry.Success {
			t.Fatalf("Latest() = %+v, want entry new with Success=false", entry)
		}
	})

	t.Run("latest on unknown document", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.Latest(ctx, "missing.docx")
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if ok {
			t.Fatal("Latest() ok = true for unknown document, want false")
		}
	})

	t.Run("prune removes only entries before cutoff", func(t *testing.T) {
		s := newStore(t)
		if err := s.Append(ctx, testEntry("stale", "report.docx", base.Add(-48*time.Hour), true)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := s.Append(ctx, testEntry("fresh", "report.docx", base, true)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		removed, err := s.Prune(ctx, base.Add(-time.Hour))
		if err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		if removed != 1 {
			t.Fatalf("Prune() removed = %d, want 1", removed)
		}
		entries, err := s.List(ctx, "report.docx")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 1 || entries[0].ID != "fresh" {
			t.Fatalf("List() after prune = %+v, want single entry fresh", entries)
		}
	})
}

func TestMemStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		t.Cleanup(func() {
			if err := s.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return s
	})
}

func TestSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore("   "); err == nil {
		t.Fatal("NewSQLiteStore() with blank dsn succeeded, want error")
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Append(ctx, testEntry("kept", "report.docx", time.Now().UTC(), true)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	entry, ok, err := reopened.Latest(ctx, "report.docx")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if !ok || entry.ID != "kept" {
		t.Fatalf("Latest() after reopen = (%+v, %v), want entry kept", entry, ok)
	}
}

func TestSQLiteStoreCanceledContext(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Append(ctx, testEntry("a", "report.docx", time.Now(), true)); err == nil {
		t.Fatal("Append() with canceled context succeeded, want error")
	}
}
