package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// createTestStore creates a new SQLite store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// countingAllocator counts Allocate calls and delegates to a sequence.
type countingAllocator struct {
	calls atomic.Int64
	next  bookkeeper.Allocator
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{next: bookkeeper.NewSequenceAllocator()}
}

func (a *countingAllocator) Allocate(etype ir.EntityType, source ir.ID) ir.ID {
	a.calls.Add(1)
	return a.next.Allocate(etype, source)
}
