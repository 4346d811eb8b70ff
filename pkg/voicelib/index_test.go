package voicelib

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func testIndexes(t *testing.T) map[string]Index {
	t.Helper()
	b, err := OpenBadger(BadgerOptions{
		InMemory: true,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]Index{
		"memory": NewMemoryIndex(),
		"badger": b,
	}
}

func TestIndex(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, idx := range testIndexes(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := idx.Get(ctx, "ryan"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v", err)
			}

			v := &Voice{ID: "ryan", Name: "Ryan", RefText: "hello", HasEmbedding: true, EmbeddingDim: 4, CreatedAt: created}
			if err := idx.Put(ctx, v); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := idx.Put(ctx, &Voice{ID: "anna", Name: "Anna", CreatedAt: created}); err != nil {
				t.Fatalf("Put: %v", err)
			}

			got, err := idx.Get(ctx, "ryan")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Name != "Ryan" || got.RefText != "hello" || !got.HasEmbedding || got.EmbeddingDim != 4 {
				t.Errorf("Get = %+v", got)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
			}

			got.Name = "mutated"
			again, _ := idx.Get(ctx, "ryan")
			if again.Name != "Ryan" {
				t.Error("index shares values with callers")
			}

			list, err := idx.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != "anna" || list[1].ID != "ryan" {
				t.Errorf("List = %v", ids(list))
			}

			if err := idx.Delete(ctx, "ryan"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := idx.Delete(ctx, "ryan"); err != nil {
				t.Fatalf("second Delete: %v", err)
			}
			if _, err := idx.Get(ctx, "ryan"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete error = %v", err)
			}
		})
	}
}

func TestBadgerPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	b, err := OpenBadger(BadgerOptions{Dir: dir, Logger: quiet})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := b.Put(ctx, &Voice{ID: "ryan", Name: "Ryan"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b, err = OpenBadger(BadgerOptions{Dir: dir, Logger: quiet})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	v, err := b.Get(ctx, "ryan")
	if err != nil || v.Name != "Ryan" {
		t.Errorf("Get after reopen = %+v, %v", v, err)
	}
}

func TestOpenBadgerRequiresDir(t *testing.T) {
	if _, err := OpenBadger(BadgerOptions{}); err == nil {
		t.Error("expected error without Dir")
	}
}

func ids(vs []*Voice) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}
