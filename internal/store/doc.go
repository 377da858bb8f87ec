// Package store provides the SQLite-backed ledger of reconciliation runs.
//
// Every sync run is recorded with:
//   - Runs: run id (UUIDv7), truth kind, canonical IR and its fingerprint
//   - Results: one row per representation with its status, in report order
//
// # Ordering
//
// History is ordered by the runs.seq column, newest first. Timestamps are
// stored for display only and never used for ordering, so two runs recorded
// within the same clock tick still list deterministically.
//
// # Schema
//
// schema.sql creates the tables; later changes are migrations keyed on
// PRAGMA user_version and applied by Open, one transaction each. A ledger
// written by a newer schema is refused.
//
// Canonical IRs are stored as JSON text; fingerprints come from
// ir.Fingerprint (RFC 8785 canonical JSON, SHA-256 with domain separation).
package store
