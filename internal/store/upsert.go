package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ConflictAction selects the ON CONFLICT strategy for an upsert.
type ConflictAction string

const (
	// ConflictNone inserts plainly and lets constraint violations fail.
	ConflictNone ConflictAction = ""
	// ConflictNothing drops conflicting rows silently.
	ConflictNothing ConflictAction = "nothing"
	// ConflictUpdate overwrites the non-key columns of conflicting rows.
	ConflictUpdate ConflictAction = "update"
)

// UpsertSpec describes one batched insert/update run.
type UpsertSpec struct {
	Table string
	// Columns are the input columns, matched case-insensitively against the
	// target table before anything executes.
	Columns         []string
	ConflictColumns []string
	Action          ConflictAction
	// UpdateColumns limits what ConflictUpdate overwrites; empty means every
	// input column outside the conflict key.
	UpdateColumns []string
	// BatchSize caps rows per round trip. Zero means 1000.
	BatchSize int
}

const defaultBatchSize = 1000

// Upsert validates the spec against the live table and inserts the rows in
// batches inside a single transaction. Each run gets an id so its log lines
// can be tied together.
func (s *Store) Upsert(ctx context.Context, spec UpsertSpec, rows [][]any) error {
	if spec.Table == "" {
		return fmt.Errorf("upsert needs a target table")
	}
	if len(spec.Columns) == 0 {
		return fmt.Errorf("upsert into %s: no input columns", spec.Table)
	}

	target, err := s.columnNames(ctx, spec.Table)
	if err != nil {
		return err
	}
	cols := lowered(spec.Columns)
	if unmatched := subtract(cols, target); len(unmatched) > 0 {
		return fmt.Errorf("input has unmatched columns with target table %s: %s",
			spec.Table, strings.Join(unmatched, ", "))
	}

	stmt, err := s.upsertSQL(spec, cols, target)
	if err != nil {
		return err
	}

	batchSize := spec.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "table", spec.Table)
	logger.Info("starting upsert", "rows", len(rows), "batch_size", batchSize)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = prepared.Close() }()

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		for i, row := range rows[start:end] {
			if len(row) != len(cols) {
				return fmt.Errorf("row %d has %d values, expected %d", start+i, len(row), len(cols))
			}
			if _, err := prepared.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to upsert row %d: %w", start+i, err)
			}
		}
		logger.Debug("batch done", "from", start, "to", end)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	logger.Info("upsert complete", "rows", len(rows))
	return nil
}

// upsertSQL renders the INSERT statement with its ON CONFLICT clause.
func (s *Store) upsertSQL(spec UpsertSpec, cols, target []string) (string, error) {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		s.schema, spec.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if len(spec.ConflictColumns) == 0 {
		if spec.Action != ConflictNone {
			return "", fmt.Errorf("conflict action %q needs conflict columns", spec.Action)
		}
		return stmt, nil
	}

	conflict := lowered(spec.ConflictColumns)
	if unmatched := subtract(conflict, target); len(unmatched) > 0 {
		return "", fmt.Errorf("conflict columns not in target table %s: %s",
			spec.Table, strings.Join(unmatched, ", "))
	}

	switch spec.Action {
	case ConflictNothing:
		stmt += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflict, ", "))
	case ConflictUpdate:
		updates := lowered(spec.UpdateColumns)
		if len(updates) == 0 {
			updates = subtract(cols, conflict)
		}
		if unmatched := subtract(updates, target); len(unmatched) > 0 {
			return "", fmt.Errorf("update columns not in target table %s: %s",
				spec.Table, strings.Join(unmatched, ", "))
		}
		set := make([]string, len(updates))
		for i, col := range updates {
			set[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
		}
		stmt += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(conflict, ", "), strings.Join(set, ", "))
	default:
		return "", fmt.Errorf("conflict action must be %q or %q", ConflictNothing, ConflictUpdate)
	}
	return stmt, nil
}

// columnNames loads the lowercased column names of a table.
func (s *Store) columnNames(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := s.db.QueryContext(ctx, query, s.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols = append(cols, strings.ToLower(col))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", s.schema, table)
	}
	return cols, nil
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// subtract returns the members of a that are missing from b, in order.
func subtract(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
