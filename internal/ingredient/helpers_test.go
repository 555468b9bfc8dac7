package ingredient

import (
	"sync"

	"github.com/roach88/rowcook/internal/ir"
)

// stubBooks is a deterministic BookKeeper for tests. Mappings are looked up
// in targets; when fixed is set it is returned for every id instead.
type stubBooks struct {
	mu      sync.Mutex
	fixed   ir.ID
	targets map[ir.Dep]ir.ID
	calls   []ir.Dep
}

func mockBooks() *stubBooks {
	return &stubBooks{fixed: ir.UUID("MOCK")}
}

func mappedBooks(targets map[ir.Dep]ir.ID) *stubBooks {
	return &stubBooks{targets: targets}
}

func (b *stubBooks) ResolveID(etype ir.EntityType, id ir.ID, authoritative bool) (ir.ID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, ir.NewDep(etype, id))
	if authoritative {
		panic("ingredients must never resolve authoritatively")
	}
	if b.fixed != nil {
		return b.fixed, true
	}
	target, ok := b.targets[ir.NewDep(etype, id)]
	return target, ok
}

func (b *stubBooks) Reset() {}

func (b *stubBooks) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func emptyRow() ir.Row { return ir.Row{} }
