package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// maxBindParams keeps multi-row inserts under SQLite's default host
// parameter limit.
const maxBindParams = 999

type bronzeRepository struct {
	db *sql.DB
}

// NewBronzeRepository wires a repository backed by the SQLite analytic store.
// Table and field names passed to it come from the static schema registry,
// never from source data.
func NewBronzeRepository(db *sql.DB) BronzeRepository {
	return &bronzeRepository{db: db}
}

func (r *bronzeRepository) EnsureTable(ctx context.Context, ddl string) error {
	if r.db == nil {
		return fmt.Errorf("bronze repository not initialized")
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure bronze table: %w", err)
	}
	return nil
}

func (r *bronzeRepository) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	if r.db == nil {
		return fmt.Errorf("bronze repository not initialized")
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	chunkSize := maxBindParams / len(columns)
	if chunkSize < 1 {
		chunkSize = 1
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return fmt.Errorf("row has %d values, expected %d", len(row), len(columns))
			}
			placeholders[i] = placeholder
			args = append(args, row...)
		}

		if _, err := tx.ExecContext(ctx, prefix+strings.Join(placeholders, ", "), args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert into %s: %w", table, err)
	}
	return nil
}

func (r *bronzeRepository) PartitionFieldNulls(ctx context.Context, table, field, quarter string) (int, int, error) {
	if r.db == nil {
		return 0, 0, fmt.Errorf("bronze repository not initialized")
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*), SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) FROM %s WHERE data_quarter = ?`,
		field, table,
	)

	var total int
	var nulls sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, quarter).Scan(&total, &nulls); err != nil {
		return 0, 0, fmt.Errorf("failed to count nulls for %s.%s: %w", table, field, err)
	}
	return total, int(nulls.Int64), nil
}
