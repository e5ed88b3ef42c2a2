package repository

import (
	"context"

	"github.com/secfsds/bronze/internal/domain"
)

// BronzeRepository defines the store operations the loader and auditor need
// against the bronze tables.
type BronzeRepository interface {
	// EnsureTable issues an idempotent create statement; it never alters an
	// existing table.
	EnsureTable(ctx context.Context, ddl string) error

	// InsertBatch appends all rows in one transaction. Either every row lands
	// or none do.
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error

	// PartitionFieldNulls reports the row count and the null count for one
	// field within one quarter of a table.
	PartitionFieldNulls(ctx context.Context, table, field, quarter string) (total int, nulls int, err error)
}

// QualityLogFilter narrows audit-log listings.
type QualityLogFilter struct {
	Quarter   string
	TableName string
	Limit     int
}

// QualityLogRepository persists the permanent quality audit log.
type QualityLogRepository interface {
	Record(ctx context.Context, entry domain.QualityLogEntry) error
	List(ctx context.Context, filter QualityLogFilter) ([]domain.QualityLogEntry, error)
}
