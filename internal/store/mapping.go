package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/rowcook/internal/ir"
)

const (
	kindInt  = "i"
	kindUUID = "u"
)

// Mapping is one stored source-to-target identifier pair.
type Mapping struct {
	EntityType ir.EntityType
	Source     ir.ID
	Target     ir.ID
}

func idColumns(id ir.ID) (kind, text string) {
	if _, ok := id.(ir.IntID); ok {
		return kindInt, id.Text()
	}
	return kindUUID, id.Text()
}

func scanID(kind, text string) (ir.ID, error) {
	switch kind {
	case kindInt:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer id %q: %w", text, err)
		}
		return ir.IntID(n), nil
	case kindUUID:
		return ir.UUID(text), nil
	default:
		return nil, fmt.Errorf("unknown id kind %q", kind)
	}
}

// Lookup returns the target identifier mapped to source, if any.
func (s *Store) Lookup(ctx context.Context, etype ir.EntityType, source ir.ID) (ir.ID, bool, error) {
	kind, text := idColumns(source)

	var targetKind, targetID string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT target_kind, target_id FROM id_mappings
		WHERE entity_type = ? AND source_kind = ? AND source_id = ?
	`), etype, kind, text).Scan(&targetKind, &targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup mapping: %w", err)
	}

	target, err := scanID(targetKind, targetID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup mapping: %w", err)
	}
	return target, true, nil
}

// Insert stores source -> target unless source already has a mapping.
// It returns the stored target, which is the existing one on conflict, and
// whether this call inserted it.
func (s *Store) Insert(ctx context.Context, etype ir.EntityType, source, target ir.ID) (stored ir.ID, inserted bool, err error) {
	sourceKind, sourceID := idColumns(source)
	targetKind, targetID := idColumns(target)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("insert mapping: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO id_mappings
		(entity_type, source_kind, source_id, target_kind, target_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, source_kind, source_id) DO NOTHING
	`), etype, sourceKind, sourceID, targetKind, targetID)
	if err != nil {
		return nil, false, fmt.Errorf("insert mapping: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert mapping: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		stored, inserted = target, true
	} else {
		// Conflict - another writer got there first
		var existingKind, existingID string
		err = tx.QueryRowContext(ctx, s.rebind(`
			SELECT target_kind, target_id FROM id_mappings
			WHERE entity_type = ? AND source_kind = ? AND source_id = ?
		`), etype, sourceKind, sourceID).Scan(&existingKind, &existingID)
		if err != nil {
			return nil, false, fmt.Errorf("insert mapping: select existing: %w", err)
		}
		if stored, err = scanID(existingKind, existingID); err != nil {
			return nil, false, fmt.Errorf("insert mapping: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("insert mapping: commit: %w", err)
	}
	return stored, inserted, nil
}

// Mappings returns every mapping of etype ordered by source kind, then by
// source identifier text.
func (s *Store) Mappings(ctx context.Context, etype ir.EntityType) ([]Mapping, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT source_kind, source_id, target_kind, target_id FROM id_mappings
		WHERE entity_type = ?
		ORDER BY source_kind ASC, source_id ASC
	`), etype)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var sk, sid, tk, tid string
		if err := rows.Scan(&sk, &sid, &tk, &tid); err != nil {
			return nil, fmt.Errorf("list mappings: scan: %w", err)
		}
		source, err := scanID(sk, sid)
		if err != nil {
			return nil, fmt.Errorf("list mappings: %w", err)
		}
		target, err := scanID(tk, tid)
		if err != nil {
			return nil, fmt.Errorf("list mappings: %w", err)
		}
		out = append(out, Mapping{EntityType: etype, Source: source, Target: target})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return out, nil
}

// Count returns the number of mappings stored for etype.
func (s *Store) Count(ctx context.Context, etype ir.EntityType) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM id_mappings WHERE entity_type = ?
	`), etype).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count mappings: %w", err)
	}
	return n, nil
}

// MaxIntTarget returns the highest integer target stored for etype, or 0
// when there is none.
func (s *Store) MaxIntTarget(ctx context.Context, etype ir.EntityType) (uint64, error) {
	var top sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(fmt.Sprintf(`
		SELECT MAX(CAST(target_id AS %s)) FROM id_mappings
		WHERE entity_type = ? AND target_kind = ?
	`, s.dialect.integerType())), etype, kindInt).Scan(&top)
	if err != nil {
		return 0, fmt.Errorf("max target: %w", err)
	}
	if !top.Valid {
		return 0, nil
	}
	n, err := strconv.ParseUint(top.String, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("max target: %w", err)
	}
	return n, nil
}

// Truncate deletes every stored mapping.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM id_mappings`); err != nil {
		return fmt.Errorf("truncate mappings: %w", err)
	}
	return nil
}
