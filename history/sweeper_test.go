package history

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNewSweeperValidation(t *testing.T) {
	store := NewMemStore()
	tests := []struct {
		name string
		cfg  SweeperConfig
	}{
		{name: "missing store", cfg: SweeperConfig{Retention: time.Hour}},
		{name: "zero retention", cfg: SweeperConfig{Store: store}},
		{name: "negative retention", cfg: SweeperConfig{Store: store, Retention: -time.Hour}},
		{name: "bad schedule", cfg: SweeperConfig{Store: store, Retention: time.Hour, Schedule: "every hour"}},
		{name: "six field schedule", cfg: SweeperConfig{Store: store, Retention: time.Hour, Schedule: "0 0 * * * *"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSweeper(tt.cfg); err == nil {
				t.Fatalf("NewSweeper(%+v) succeeded, want error", tt.cfg)
			}
		})
	}
}

func TestSweeperDefaultsSchedule(t *testing.T) {
	s, err := NewSweeper(SweeperConfig{Store: NewMemStore(), Retention: time.Hour})
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}
	s.Start()
	s.Stop()
}

func TestSweepPrunesOldEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	if err := store.Append(ctx, testEntry("stale", "report.docx", time.Now().Add(-48*time.Hour), true)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, testEntry("fresh", "report.docx", time.Now(), true)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	s, err := NewSweeper(SweeperConfig{
		Store:     store,
		Retention: 24 * time.Hour,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}
	s.sweep()

	entries, err := store.List(ctx, "report.docx")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "fresh" {
		t.Fatalf("List() after sweep = %+v, want single entry fresh", entries)
	}
}
