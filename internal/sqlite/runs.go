package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// SaveRun stores a run and its records in one transaction and returns the
// generated run ID. run.ID is ignored; a zero CreatedAt is set to now.
func (b *Backend) SaveRun(run types.Run, records []types.ResolutionRecord) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrIndexDetached
	}

	id := generateUUID()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning run transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, inventory, created_at, groups_total, excluded, with_image, misses)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, run.Inventory, run.CreatedAt.Format(time.RFC3339Nano),
		run.Groups, run.Excluded, run.WithImage, run.Misses,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO resolutions (run_id, ordinal, part_id, colour_id, quantity, path, width, height, source, important, missing)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing resolution insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.Exec(id, i, rec.PartID, rec.ColourID, rec.Quantity, rec.Path,
			rec.Width, rec.Height, rec.Source, rec.Important, rec.Missing)
		if err != nil {
			return "", fmt.Errorf("inserting resolution for part %s: %w", rec.PartID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	b.log.Info("run saved", "run", id, "inventory", run.Inventory, "records", len(records))
	return id, nil
}

// Runs returns every stored run, newest first.
func (b *Backend) Runs() ([]types.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrIndexDetached
	}

	rows, err := b.db.Query(
		`SELECT run_id, inventory, created_at, groups_total, excluded, with_image, misses
		 FROM runs ORDER BY created_at DESC, run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Run returns one stored run.
func (b *Backend) Run(runID string) (types.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Run{}, types.ErrIndexDetached
	}

	row := b.db.QueryRow(
		`SELECT run_id, inventory, created_at, groups_total, excluded, with_image, misses
		 FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("run %s: %w", runID, types.ErrNotFound)
	}
	return run, err
}

// Resolutions returns the records of one run in their stored order.
func (b *Backend) Resolutions(runID string) ([]types.ResolutionRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrIndexDetached
	}

	var exists int
	err := b.db.QueryRow(`SELECT 1 FROM runs WHERE run_id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}

	rows, err := b.db.Query(
		`SELECT part_id, colour_id, quantity, path, width, height, source, important, missing
		 FROM resolutions WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying resolutions: %w", err)
	}
	defer rows.Close()

	var out []types.ResolutionRecord
	for rows.Next() {
		var rec types.ResolutionRecord
		if err := rows.Scan(&rec.PartID, &rec.ColourID, &rec.Quantity, &rec.Path,
			&rec.Width, &rec.Height, &rec.Source, &rec.Important, &rec.Missing); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resolutions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (types.Run, error) {
	var run types.Run
	var created string
	if err := s.Scan(&run.ID, &run.Inventory, &created, &run.Groups, &run.Excluded, &run.WithImage, &run.Misses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return run, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}
