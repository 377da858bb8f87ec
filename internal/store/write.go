package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordRun inserts a run and its results in one transaction.
//
// An empty run.ID is filled with a fresh UUIDv7 and a zero CreatedAt with
// the store clock; both are written back to run. Seq is assigned by the
// database and also written back.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("record run: generate id: %w", err)
		}
		run.ID = id.String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, truth, fingerprint, canonical, dry_run, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Truth,
		run.Fingerprint,
		run.Canonical,
		run.DryRun,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for i, r := range run.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO results (run_id, position, kind, location, name, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, r.Kind, r.Location, r.Name, r.Status)
		if err != nil {
			return fmt.Errorf("record run: result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	run.Seq = seq
	return nil
}
