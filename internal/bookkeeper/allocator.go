package bookkeeper

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/rowcook/internal/ir"
)

// Allocator mints a new target-space identifier for a source identifier that
// has no mapping yet. BookKeepers call it at most once per winning mapping,
// but concurrent losers may call it and discard the result.
type Allocator interface {
	Allocate(etype ir.EntityType, source ir.ID) ir.ID
}

// UUIDAllocator mints time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDAllocator is stateless and safe for concurrent use.
type UUIDAllocator struct{}

// Allocate returns a fresh UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDAllocator) Allocate(ir.EntityType, ir.ID) ir.ID {
	return ir.UUID(uuid.Must(uuid.NewV7()).String())
}

// Seeder is implemented by allocators whose identifiers can collide with
// targets a durable backend already holds. Backends call Seed with the
// highest stored integer target before allocating for etype.
type Seeder interface {
	// Seed makes every later Allocate for etype return an identifier above
	// floor. A floor below the current position is ignored.
	Seed(etype ir.EntityType, floor uint64)
}

// SequenceAllocator mints integer identifiers from an independent counter per
// entity type, starting at 1 or just above the seeded floor. Use it when the
// target space is auto-increment.
type SequenceAllocator struct {
	mu   sync.Mutex
	next map[ir.EntityType]uint64 // last issued per type
}

var _ Seeder = (*SequenceAllocator)(nil)

// NewSequenceAllocator creates a SequenceAllocator.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{next: make(map[ir.EntityType]uint64)}
}

// Allocate returns the next integer for etype.
func (a *SequenceAllocator) Allocate(etype ir.EntityType, _ ir.ID) ir.ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next[etype]++
	return ir.IntID(a.next[etype])
}

// Seed implements Seeder.
func (a *SequenceAllocator) Seed(etype ir.EntityType, floor uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next[etype] < floor {
		a.next[etype] = floor
	}
}

// FixedAllocator returns predetermined identifiers for testing.
//
// Thread-safety: FixedAllocator is safe for concurrent use via internal mutex.
type FixedAllocator struct {
	mu  sync.Mutex
	ids []ir.ID
	idx int
}

// NewFixedAllocator creates an allocator that returns ids in order.
func NewFixedAllocator(ids ...ir.ID) *FixedAllocator {
	return &FixedAllocator{ids: ids}
}

// Allocate returns the next predetermined id.
//
// Panics if all ids have been consumed. A test that allocates more than it
// provided is wrong.
func (a *FixedAllocator) Allocate(etype ir.EntityType, source ir.ID) ir.ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.idx >= len(a.ids) {
		panic(fmt.Sprintf("FixedAllocator: exhausted after %d ids (allocating %s/%s)", len(a.ids), etype, source.Text()))
	}
	id := a.ids[a.idx]
	a.idx++
	return id
}
