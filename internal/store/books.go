package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
)

// DefaultTimeout bounds each database round trip made by Books.
const DefaultTimeout = 5 * time.Second

type cacheKey struct {
	etype ir.EntityType
	kind  string
	id    string
}

// Books is a bookkeeper.BookKeeper backed by a Store.
//
// Resolved mappings are cached in memory; Reset drops the cache but never
// the durable mappings (use Store.Truncate for that). Authoritative
// resolution of one entity type is serialized within the process, and the
// table's primary key arbitrates between processes.
//
// A bookkeeper.Seeder allocator is seeded from the highest stored integer
// target before its first allocation for a type, and reseeded once when an
// insert fails, which covers a target taken by another process.
type Books struct {
	store   *Store
	alloc   bookkeeper.Allocator
	ctx     context.Context
	timeout time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]ir.ID

	locksMu sync.Mutex
	locks   map[ir.EntityType]*typeState
}

// typeState is guarded by its own mutex, held for authoritative resolution.
type typeState struct {
	sync.Mutex
	seeded bool
}

var _ bookkeeper.BookKeeper = (*Books)(nil)

// NewBooks creates a BookKeeper over s. ctx scopes every database call;
// a nil alloc mints UUIDv7 targets.
func NewBooks(ctx context.Context, s *Store, alloc bookkeeper.Allocator) *Books {
	if alloc == nil {
		alloc = bookkeeper.UUIDAllocator{}
	}
	return &Books{
		store:   s,
		alloc:   alloc,
		ctx:     ctx,
		timeout: DefaultTimeout,
		cache:   make(map[cacheKey]ir.ID),
		locks:   make(map[ir.EntityType]*typeState),
	}
}

// ResolveID implements bookkeeper.BookKeeper. Database errors are logged
// and reported as a miss.
func (b *Books) ResolveID(etype ir.EntityType, id ir.ID, authoritative bool) (ir.ID, bool) {
	if id == nil {
		return nil, false
	}
	kind, text := idColumns(id)
	k := cacheKey{etype: etype, kind: kind, id: text}

	if target, ok := b.cached(k); ok {
		return target, true
	}

	if !authoritative {
		return b.lookup(etype, id, k)
	}

	st := b.typeState(etype)
	st.Lock()
	defer st.Unlock()

	if target, ok := b.cached(k); ok {
		return target, true
	}
	if target, ok := b.lookup(etype, id, k); ok {
		return target, true
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	seeder, seeding := b.alloc.(bookkeeper.Seeder)
	if seeding && !st.seeded {
		if err := b.seed(ctx, seeder, etype); err != nil {
			slog.Warn("allocator seeding failed", "entity_type", etype, "error", err)
			return nil, false
		}
		st.seeded = true
	}

	stored, inserted, err := b.store.Insert(ctx, etype, id, b.alloc.Allocate(etype, id))
	if err != nil && seeding {
		slog.Debug("mapping insert failed, reseeding", "entity_type", etype, "id", text, "error", err)
		if err = b.seed(ctx, seeder, etype); err == nil {
			stored, inserted, err = b.store.Insert(ctx, etype, id, b.alloc.Allocate(etype, id))
		}
	}
	if err != nil {
		slog.Warn("mapping insert failed", "entity_type", etype, "id", text, "error", err)
		return nil, false
	}
	if inserted {
		slog.Debug("allocated mapping", "entity_type", etype, "id", text, "target", stored.Text())
	}
	b.remember(k, stored)
	return stored, true
}

// Reset implements bookkeeper.BookKeeper. Only the in-memory cache is
// cleared.
func (b *Books) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[cacheKey]ir.ID)
}

func (b *Books) lookup(etype ir.EntityType, id ir.ID, k cacheKey) (ir.ID, bool) {
	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	target, ok, err := b.store.Lookup(ctx, etype, id)
	if err != nil {
		slog.Warn("mapping lookup failed", "entity_type", etype, "id", k.id, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	b.remember(k, target)
	return target, true
}

func (b *Books) cached(k cacheKey) (ir.ID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	target, ok := b.cache[k]
	return target, ok
}

func (b *Books) remember(k cacheKey, target ir.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[k] = target
}

func (b *Books) seed(ctx context.Context, seeder bookkeeper.Seeder, etype ir.EntityType) error {
	floor, err := b.store.MaxIntTarget(ctx, etype)
	if err != nil {
		return err
	}
	seeder.Seed(etype, floor)
	return nil
}

func (b *Books) typeState(etype ir.EntityType) *typeState {
	b.locksMu.Lock()
	defer b.locksMu.Unlock()
	st, ok := b.locks[etype]
	if !ok {
		st = &typeState{}
		b.locks[etype] = st
	}
	return st
}
