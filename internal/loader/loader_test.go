package loader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/secfsds/bronze/internal/domain"
	"github.com/secfsds/bronze/internal/quality"
)

type stubBronzeRepo struct {
	ddl     []string
	table   string
	columns []string
	rows    [][]any
}

func (s *stubBronzeRepo) EnsureTable(ctx context.Context, ddl string) error {
	s.ddl = append(s.ddl, ddl)
	return nil
}

func (s *stubBronzeRepo) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	s.table = table
	s.columns = columns
	s.rows = rows
	return nil
}

func (s *stubBronzeRepo) PartitionFieldNulls(ctx context.Context, table, field, quarter string) (int, int, error) {
	return 0, 0, nil
}

type stubAuditor struct {
	req      quality.Request
	called   bool
	failures []domain.CheckFailure
}

func (s *stubAuditor) Run(ctx context.Context, req quality.Request) ([]domain.CheckFailure, error) {
	s.called = true
	s.req = req
	return s.failures, nil
}

func testSpec() domain.SourceFileSpec {
	return domain.SourceFileSpec{
		FileType:  domain.FileTypeSub,
		FileName:  "sub.txt",
		Table:     "bronze_sub",
		Delimiter: '\t',
		Encoding:  domain.EncodingUTF8,
		Columns: []domain.ColumnSpec{
			{Name: "adsh", Type: domain.ColumnTypeText, MaxLen: 20},
			{Name: "cik", Type: domain.ColumnTypeInteger},
			{Name: "period", Type: domain.ColumnTypeDate, Nullable: true},
			{Name: "wksi", Type: domain.ColumnTypeBoolean, Nullable: true},
		},
		Checks: []domain.QualityCheck{
			{Category: domain.CheckCategoryTypeConversion, CheckType: "integer_conversion", Field: "cik", Severity: domain.SeverityCritical},
		},
	}
}

func testRecordSet(rows [][]string) domain.RawRecordSet {
	return domain.RawRecordSet{
		FileType:      domain.FileTypeSub,
		Quarter:       "2024q4",
		LoadID:        uuid.New(),
		LoadTimestamp: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		Columns:       []string{"adsh", "cik", "period", "wksi"},
		Rows:          rows,
	}
}

func TestLoadCoercesAndInsertsEveryRow(t *testing.T) {
	bronze := &stubBronzeRepo{}
	auditor := &stubAuditor{}
	l := NewLoader(bronze, auditor, nil)

	rs := testRecordSet([][]string{
		{"0000001-24-000001", "320193", "20240315", "1"},
		{"0000002-24-000002", "notanumber", "", "0"},
	})

	result, err := l.Load(context.Background(), testSpec(), rs)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if result.Rows != 2 {
		t.Fatalf("expected 2 rows in result, got %d", result.Rows)
	}

	if len(bronze.ddl) != 1 || !strings.Contains(bronze.ddl[0], "CREATE TABLE IF NOT EXISTS bronze_sub") {
		t.Fatalf("table not ensured idempotently: %v", bronze.ddl)
	}
	if len(bronze.rows) != 2 {
		t.Fatalf("both rows must be inserted, got %d", len(bronze.rows))
	}

	first := bronze.rows[0]
	if first[0] != "0000001-24-000001" || first[1] != int64(320193) || first[2] != "2024-03-15" || first[3] != true {
		t.Fatalf("unexpected coerced first row: %v", first)
	}

	// The malformed cik becomes a typed null; the row is still kept.
	second := bronze.rows[1]
	if second[1] != nil {
		t.Fatalf("failed cast must yield nil, got %v", second[1])
	}
	if second[2] != nil {
		t.Fatalf("empty source field must yield nil, got %v", second[2])
	}

	// Metadata columns carry the partition key and one shared load instant.
	if first[4] != "2024q4" || first[5] != "2025-02-01 12:00:00" {
		t.Fatalf("metadata columns wrong: %v", first[4:])
	}
	if last := bronze.columns[len(bronze.columns)-2]; last != domain.MetadataQuarterColumn {
		t.Fatalf("metadata columns must come last: %v", bronze.columns)
	}
}

func TestLoadCapturesBaselineBeforeCoercion(t *testing.T) {
	bronze := &stubBronzeRepo{}
	auditor := &stubAuditor{}
	l := NewLoader(bronze, auditor, nil)

	rs := testRecordSet([][]string{
		{"a", "1", "20240101", "1"},
		{"b", "", "", "1"},
		{"c", "", "bad", "1"},
	})

	if _, err := l.Load(context.Background(), testSpec(), rs); err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if !auditor.called {
		t.Fatal("auditor must run after the load")
	}

	// Two cik values were empty in the source; the bad date was present, so
	// it is not part of the baseline.
	if got := auditor.req.SourceNullCounts["cik"]; got != 2 {
		t.Fatalf("cik baseline = %d, want 2", got)
	}
	if got := auditor.req.SourceNullCounts["period"]; got != 1 {
		t.Fatalf("period baseline = %d, want 1", got)
	}
	if auditor.req.TotalRecords != 3 {
		t.Fatalf("total records = %d, want 3", auditor.req.TotalRecords)
	}
	if auditor.req.Table != "bronze_sub" || auditor.req.Quarter != "2024q4" {
		t.Fatalf("audit request mis-addressed: %+v", auditor.req)
	}
}

func TestLoadFailsFastOnMissingCastRule(t *testing.T) {
	bronze := &stubBronzeRepo{}
	l := NewLoader(bronze, &stubAuditor{}, nil)

	spec := testSpec()
	spec.Columns = append(spec.Columns, domain.ColumnSpec{Name: "blob", Type: domain.ColumnType("BLOB")})

	_, err := l.Load(context.Background(), spec, testRecordSet(nil))
	if !errors.Is(err, ErrCastUnsupported) {
		t.Fatalf("expected ErrCastUnsupported, got %v", err)
	}
	if len(bronze.rows) != 0 {
		t.Fatal("no rows may be written when a cast rule is missing")
	}
}

func TestLoadSkipsAuditWithoutChecks(t *testing.T) {
	bronze := &stubBronzeRepo{}
	auditor := &stubAuditor{}
	l := NewLoader(bronze, auditor, nil)

	spec := testSpec()
	spec.Checks = nil

	if _, err := l.Load(context.Background(), spec, testRecordSet([][]string{{"a", "1", "", ""}})); err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if auditor.called {
		t.Fatal("auditor must not run for a spec without checks")
	}
}

func TestLoadSurfacesQualityFailuresWithoutError(t *testing.T) {
	bronze := &stubBronzeRepo{}
	auditor := &stubAuditor{failures: []domain.CheckFailure{
		{Field: "cik", Severity: domain.SeverityCritical, IssueCount: 1},
	}}
	l := NewLoader(bronze, auditor, nil)

	result, err := l.Load(context.Background(), testSpec(), testRecordSet([][]string{{"a", "x", "", ""}}))
	if err != nil {
		t.Fatalf("quality failures must not be errors: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].Field != "cik" {
		t.Fatalf("failures not surfaced: %+v", result.Failures)
	}
}

func TestLoadHandlesMissingSourceColumn(t *testing.T) {
	bronze := &stubBronzeRepo{}
	auditor := &stubAuditor{}
	l := NewLoader(bronze, auditor, nil)

	rs := testRecordSet([][]string{{"a", "1"}})
	rs.Columns = []string{"adsh", "cik"} // period and wksi absent from the file

	if _, err := l.Load(context.Background(), testSpec(), rs); err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	row := bronze.rows[0]
	if row[2] != nil || row[3] != nil {
		t.Fatalf("columns missing from the source must insert as nulls: %v", row)
	}
	if got := auditor.req.SourceNullCounts["period"]; got != 1 {
		t.Fatalf("missing column baseline = %d, want 1", got)
	}
}
