// Package store provides durable SQL storage for identifier mappings.
//
// One table holds every mapping:
//
//	id_mappings(entity_type, source_kind, source_id, target_kind, target_id)
//
// keyed by (entity_type, source_kind, source_id). The kind columns hold "i"
// for integer identifiers and "u" for UUID strings, so IntID(1) and UUID("1")
// never collide. A target identifier is unique within its entity type.
//
// Mappings are written with INSERT ... ON CONFLICT DO NOTHING followed by a
// SELECT inside one transaction; whichever writer commits first wins and every
// other writer reads its target back.
//
// # Database Configuration
//
// SQLite (default):
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Schema version tracked in PRAGMA user_version
//
// Postgres is supported through OpenPostgres; queries are written with "?"
// placeholders and rebound to "$n" for that dialect.
package store
