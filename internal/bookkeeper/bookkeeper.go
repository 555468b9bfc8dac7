// Package bookkeeper defines the identifier resolution contract used by
// ingredients, together with in-memory and Redis-backed implementations.
//
// A BookKeeper maps source-space identifiers to target-space identifiers per
// entity type. Implementations must be safe for concurrent use:
// ResolveID(etype, id, true) allocates at most one target identifier per
// distinct (etype, id), even when several workers resolve it for the first
// time at once.
//
// Backend failures are not distinguished from "no mapping": both are a miss.
package bookkeeper

import (
	"github.com/roach88/rowcook/internal/ir"
)

// BookKeeper resolves source identifiers to target identifiers.
type BookKeeper interface {
	// ResolveID returns the target-space identifier for a source-space id of
	// etype. With authoritative false a missing mapping is a miss (ok=false)
	// and nothing is created. With authoritative true a missing mapping is
	// created, idempotently.
	ResolveID(etype ir.EntityType, id ir.ID, authoritative bool) (ir.ID, bool)

	// Reset clears all cached or in-memory resolution state.
	Reset()
}

// key identifies one source identifier within an entity type.
type key struct {
	kind  byte
	value string
}

func keyOf(id ir.ID) key {
	switch v := id.(type) {
	case ir.IntID:
		return key{kind: 'i', value: v.Text()}
	default:
		return key{kind: 'u', value: id.Text()}
	}
}
