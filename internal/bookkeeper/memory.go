package bookkeeper

import (
	"sync"

	"github.com/roach88/rowcook/internal/ir"
)

// Memory is a BookKeeper holding all mappings in process memory.
//
// Each entity type has its own table guarded by its own RWMutex, so lookups of
// different types never contend and authoritative allocation is serialized
// only within a type.
type Memory struct {
	alloc Allocator

	mu     sync.RWMutex // guards tables
	tables map[ir.EntityType]*table
}

type table struct {
	mu      sync.RWMutex
	targets map[key]ir.ID
}

// NewMemory creates an empty Memory. alloc mints target identifiers on
// authoritative misses; nil means UUIDAllocator.
func NewMemory(alloc Allocator) *Memory {
	if alloc == nil {
		alloc = UUIDAllocator{}
	}
	return &Memory{
		alloc:  alloc,
		tables: make(map[ir.EntityType]*table),
	}
}

// ResolveID implements BookKeeper.
func (m *Memory) ResolveID(etype ir.EntityType, id ir.ID, authoritative bool) (ir.ID, bool) {
	if id == nil {
		return nil, false
	}
	k := keyOf(id)

	t := m.table(etype, authoritative)
	if t == nil {
		return nil, false
	}

	t.mu.RLock()
	target, ok := t.targets[k]
	t.mu.RUnlock()
	if ok || !authoritative {
		return target, ok
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check: another worker may have allocated while we waited.
	if target, ok := t.targets[k]; ok {
		return target, true
	}
	target = m.alloc.Allocate(etype, id)
	t.targets[k] = target
	return target, true
}

// Record stores a known mapping, replacing any existing one.
func (m *Memory) Record(etype ir.EntityType, source, target ir.ID) {
	t := m.table(etype, true)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets[keyOf(source)] = target
}

// Len returns the number of mappings held for etype.
func (m *Memory) Len(etype ir.EntityType) int {
	t := m.table(etype, false)
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.targets)
}

// Reset implements BookKeeper. It drops every mapping.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[ir.EntityType]*table)
}

// table returns the table for etype, creating it when create is true.
func (m *Memory) table(etype ir.EntityType, create bool) *table {
	m.mu.RLock()
	t, ok := m.tables[etype]
	m.mu.RUnlock()
	if ok || !create {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[etype]; ok {
		return t
	}
	t = &table{targets: make(map[key]ir.ID)}
	m.tables[etype] = t
	return t
}
