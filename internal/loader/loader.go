// Package loader moves a raw record set into its bronze table using
// best-effort coercion: a field that cannot be parsed becomes a typed null
// and the row is inserted anyway. No row is ever rejected for a bad field.
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/secfsds/bronze/internal/domain"
	"github.com/secfsds/bronze/internal/quality"
	"github.com/secfsds/bronze/internal/repository"
	"github.com/secfsds/bronze/internal/schema"
)

// Auditor runs the quality checks after a load and reports failures.
type Auditor interface {
	Run(ctx context.Context, req quality.Request) ([]domain.CheckFailure, error)
}

// Loader coerces and appends record sets.
type Loader struct {
	bronze  repository.BronzeRepository
	auditor Auditor
	log     *zap.Logger
}

// NewLoader creates a loader. The auditor may be nil when no file type in the
// run defines quality checks.
func NewLoader(bronze repository.BronzeRepository, auditor Auditor, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{bronze: bronze, auditor: auditor, log: log}
}

// Load creates the destination table if absent, appends every row of the
// record set with per-column try-casts applied, and hands the result to the
// auditor. Reloading the same quarter appends duplicate rows; that is a
// documented property of the bronze layer, not an error.
func (l *Loader) Load(ctx context.Context, spec domain.SourceFileSpec, rs domain.RawRecordSet) (domain.FileLoadResult, error) {
	result := domain.FileLoadResult{
		FileType: spec.FileType,
		Table:    spec.Table,
		Rows:     len(rs.Rows),
	}

	// Resolve every cast up front so a missing cast rule aborts before any
	// row is written.
	casts := make([]castFunc, len(spec.Columns))
	for i, col := range spec.Columns {
		fn, err := castForType(col.Type)
		if err != nil {
			return result, fmt.Errorf("column %s.%s: %w", spec.Table, col.Name, err)
		}
		casts[i] = fn
	}

	// Capture the source null baseline before coercion. Comparing it with the
	// destination's null counts afterwards is the only way to tell "the source
	// never had a value" apart from "the cast destroyed a value".
	baseline := make(map[string]int)
	for _, col := range spec.Columns {
		if col.Type != domain.ColumnTypeText {
			baseline[col.Name] = rs.NullCount(col.Name)
		}
	}
	for _, chk := range spec.Checks {
		if _, tracked := baseline[chk.Field]; !tracked {
			baseline[chk.Field] = rs.NullCount(chk.Field)
		}
	}

	if err := l.bronze.EnsureTable(ctx, schema.CreateTableSQL(spec)); err != nil {
		return result, err
	}

	sourceIndex := make(map[string]int, len(rs.Columns))
	for i, name := range rs.Columns {
		sourceIndex[name] = i
	}

	columns := schema.InsertColumns(spec)
	loadTimestamp := rs.LoadTimestamp.Format(storedTimestampLayout)

	rows := make([][]any, len(rs.Rows))
	for rowIdx, raw := range rs.Rows {
		values := make([]any, 0, len(columns))
		for colIdx, col := range spec.Columns {
			idx, present := sourceIndex[col.Name]
			if !present || idx >= len(raw) || raw[idx] == "" {
				values = append(values, nil)
				continue
			}
			values = append(values, casts[colIdx](raw[idx]))
		}
		values = append(values, rs.Quarter, loadTimestamp)
		rows[rowIdx] = values
	}

	if err := l.bronze.InsertBatch(ctx, spec.Table, columns, rows); err != nil {
		return result, err
	}

	l.log.Info("loaded bronze table",
		zap.String("table", spec.Table),
		zap.String("quarter", rs.Quarter),
		zap.Int("rows", len(rows)),
		zap.String("load_id", rs.LoadID.String()),
	)

	if l.auditor == nil || len(spec.Checks) == 0 {
		return result, nil
	}

	failures, err := l.auditor.Run(ctx, quality.Request{
		Table:            spec.Table,
		Quarter:          rs.Quarter,
		LoadTimestamp:    rs.LoadTimestamp,
		Checks:           spec.Checks,
		TotalRecords:     len(rs.Rows),
		SourceNullCounts: baseline,
	})
	if err != nil {
		return result, err
	}
	result.Failures = failures
	return result, nil
}
