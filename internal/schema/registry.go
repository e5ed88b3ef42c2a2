// Package schema declares the destination schema and quality checks for each
// source file type. The registry is static configuration: specs are defined
// once and never computed from data.
package schema

import (
	"fmt"
	"strings"

	"github.com/secfsds/bronze/internal/domain"
)

// Registry resolves a file type to its immutable source file spec.
type Registry struct {
	specs map[domain.FileType]domain.SourceFileSpec
}

// NewRegistry builds the registry with the built-in specs for the four
// quarterly extract files.
func NewRegistry() *Registry {
	specs := map[domain.FileType]domain.SourceFileSpec{
		domain.FileTypeSub: subSpec(),
		domain.FileTypeNum: numSpec(),
		domain.FileTypeTag: tagSpec(),
		domain.FileTypePre: preSpec(),
	}
	return &Registry{specs: specs}
}

// Spec returns the spec for a file type. An unknown file type is a
// configuration defect, not a data error.
func (r *Registry) Spec(ft domain.FileType) (domain.SourceFileSpec, error) {
	spec, ok := r.specs[ft]
	if !ok {
		return domain.SourceFileSpec{}, fmt.Errorf("no source file spec registered for file type %q", ft)
	}
	return spec, nil
}

// CreateTableSQL renders the idempotent DDL for a spec's bronze table. The
// statement never alters an existing table, so issuing it on every load is
// safe and the schema stays fixed at first creation.
//
// Required columns deliberately carry no NOT NULL constraint: a failed cast
// becomes a typed null and the row must still land. Required-ness is
// enforced by the CRITICAL null checks instead of the store.
func CreateTableSQL(spec domain.SourceFileSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", spec.Table)
	for i, col := range spec.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %s %s", col.Name, columnDDL(col))
	}
	fmt.Fprintf(&b, ",\n    %s VARCHAR", domain.MetadataQuarterColumn)
	fmt.Fprintf(&b, ",\n    %s TIMESTAMP\n)", domain.MetadataLoadTimestampColumn)
	return b.String()
}

func columnDDL(col domain.ColumnSpec) string {
	if col.Type == domain.ColumnTypeText && col.MaxLen > 0 {
		return fmt.Sprintf("VARCHAR(%d)", col.MaxLen)
	}
	if col.Type == domain.ColumnTypeText {
		return "VARCHAR"
	}
	return string(col.Type)
}

// InsertColumns lists the destination column names in insert order, metadata
// columns last.
func InsertColumns(spec domain.SourceFileSpec) []string {
	names := make([]string, 0, len(spec.Columns)+2)
	for _, col := range spec.Columns {
		names = append(names, col.Name)
	}
	names = append(names, domain.MetadataQuarterColumn, domain.MetadataLoadTimestampColumn)
	return names
}

func text(name string, maxLen int, nullable bool) domain.ColumnSpec {
	return domain.ColumnSpec{Name: name, Type: domain.ColumnTypeText, MaxLen: maxLen, Nullable: nullable}
}

func typed(name string, t domain.ColumnType, nullable bool) domain.ColumnSpec {
	return domain.ColumnSpec{Name: name, Type: t, Nullable: nullable}
}

func check(category domain.CheckCategory, checkType, field string, severity domain.Severity) domain.QualityCheck {
	return domain.QualityCheck{Category: category, CheckType: checkType, Field: field, Severity: severity}
}

func subSpec() domain.SourceFileSpec {
	return domain.SourceFileSpec{
		FileType:  domain.FileTypeSub,
		FileName:  "sub.txt",
		Table:     "bronze_sub",
		Delimiter: '\t',
		Encoding:  domain.EncodingUTF8,
		Columns: []domain.ColumnSpec{
			// Submission and company identifiers.
			text("adsh", 20, false),
			typed("cik", domain.ColumnTypeInteger, false),
			text("name", 150, false),
			typed("sic", domain.ColumnTypeInteger, true),

			// Business address.
			text("countryba", 2, true),
			text("stprba", 2, true),
			text("cityba", 30, true),
			text("zipba", 10, true),
			text("bas1", 40, true),
			text("bas2", 40, true),
			text("baph", 20, true),

			// Mailing address.
			text("countryma", 2, true),
			text("stprma", 2, true),
			text("cityma", 30, true),
			text("zipma", 10, true),
			text("mas1", 40, true),
			text("mas2", 40, true),

			// Incorporation.
			text("countryinc", 3, true),
			text("stprinc", 2, true),
			typed("ein", domain.ColumnTypeInteger, true),

			// Former-name history.
			text("former", 150, true),
			typed("changed", domain.ColumnTypeDate, true),

			// Filing characteristics.
			text("afs", 5, true),
			typed("wksi", domain.ColumnTypeBoolean, false),
			text("fye", 4, true),
			text("form", 10, false),

			// Period information.
			typed("period", domain.ColumnTypeDate, true),
			typed("fy", domain.ColumnTypeInteger, true),
			text("fp", 2, true),

			// Filing dates.
			typed("filed", domain.ColumnTypeDate, true),
			typed("accepted", domain.ColumnTypeTimestamp, false),

			// Flags.
			typed("prevrpt", domain.ColumnTypeBoolean, true),
			typed("detail", domain.ColumnTypeBoolean, true),

			// Instance document.
			text("instance", 40, true),
			typed("nciks", domain.ColumnTypeInteger, true),
			text("aciks", 0, true),
		},
		Checks: []domain.QualityCheck{
			check(domain.CheckCategoryNull, "required_field", "adsh", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "cik", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "name", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "wksi", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "form", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "period", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "filed", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "accepted", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "prevrpt", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "instance", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "nciks", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "cik", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "sic", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "ein", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "fy", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "date_conversion", "period", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "date_conversion", "filed", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "date_conversion", "changed", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "date_conversion", "fye", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "boolean_conversion", "wksi", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "boolean_conversion", "prevrpt", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "timestamp_conversion", "accepted", domain.SeverityCritical),
		},
	}
}

func numSpec() domain.SourceFileSpec {
	return domain.SourceFileSpec{
		FileType:  domain.FileTypeNum,
		FileName:  "num.txt",
		Table:     "bronze_num",
		Delimiter: '\t',
		Encoding:  domain.EncodingLatin1,
		Columns: []domain.ColumnSpec{
			text("adsh", 20, false),
			text("tag", 0, false),
			text("version", 20, false),
			text("coreg", 0, true),
			typed("ddate", domain.ColumnTypeDate, false),
			typed("qtrs", domain.ColumnTypeInteger, true),
			text("uom", 20, true),
			typed("value", domain.ColumnTypeDouble, true),
			text("footnote", 0, true),
		},
		Checks: []domain.QualityCheck{
			check(domain.CheckCategoryNull, "required_field", "adsh", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "tag", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "date_conversion", "ddate", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "qtrs", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "double_conversion", "value", domain.SeverityWarning),
		},
	}
}

func tagSpec() domain.SourceFileSpec {
	return domain.SourceFileSpec{
		FileType:  domain.FileTypeTag,
		FileName:  "tag.txt",
		Table:     "bronze_tag",
		Delimiter: '\t',
		Encoding:  domain.EncodingLatin1,
		Columns: []domain.ColumnSpec{
			text("tag", 0, false),
			text("version", 20, false),
			typed("custom", domain.ColumnTypeBoolean, true),
			typed("abstract", domain.ColumnTypeBoolean, true),
			text("datatype", 0, true),
			text("iord", 1, true),
			text("crdr", 1, true),
			text("tlabel", 0, true),
			text("doc", 0, true),
		},
		Checks: []domain.QualityCheck{
			check(domain.CheckCategoryNull, "required_field", "tag", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "version", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "boolean_conversion", "custom", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "boolean_conversion", "abstract", domain.SeverityWarning),
		},
	}
}

func preSpec() domain.SourceFileSpec {
	return domain.SourceFileSpec{
		FileType:  domain.FileTypePre,
		FileName:  "pre.txt",
		Table:     "bronze_pre",
		Delimiter: '\t',
		Encoding:  domain.EncodingLatin1,
		Columns: []domain.ColumnSpec{
			text("adsh", 20, false),
			typed("report", domain.ColumnTypeInteger, true),
			typed("line", domain.ColumnTypeInteger, true),
			text("stmt", 2, true),
			typed("inpth", domain.ColumnTypeBoolean, true),
			text("rfile", 1, true),
			text("tag", 0, false),
			text("version", 20, false),
			text("plabel", 0, true),
			typed("negating", domain.ColumnTypeBoolean, true),
		},
		Checks: []domain.QualityCheck{
			check(domain.CheckCategoryNull, "required_field", "adsh", domain.SeverityCritical),
			check(domain.CheckCategoryNull, "required_field", "tag", domain.SeverityCritical),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "report", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "integer_conversion", "line", domain.SeverityWarning),
			check(domain.CheckCategoryTypeConversion, "boolean_conversion", "inpth", domain.SeverityWarning),
		},
	}
}
