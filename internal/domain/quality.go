package domain

import "time"

// CheckCategory distinguishes the two kinds of quality checks.
type CheckCategory string

const (
	CheckCategoryNull           CheckCategory = "null_check"
	CheckCategoryTypeConversion CheckCategory = "type_conversion"
)

// Severity classifies how a check's issue count turns into a verdict.
// CRITICAL tolerates zero issues; WARNING tolerates under five percent.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// QualityCheck is one static check declared by a file type's spec.
type QualityCheck struct {
	Category  CheckCategory
	CheckType string
	Field     string
	Severity  Severity
}

// QualityLogEntry is one appended row of the permanent audit log. Entries are
// never mutated or deleted; repeated loads of the same quarter append new
// entries alongside the old ones.
type QualityLogEntry struct {
	LogID           int64     `csv:"log_id"`
	TableName       string    `csv:"table_name"`
	Quarter         string    `csv:"data_quarter"`
	LoadTimestamp   time.Time `csv:"load_timestamp"`
	CheckCategory   string    `csv:"check_category"`
	CheckType       string    `csv:"check_type"`
	FieldName       string    `csv:"field_name"`
	IssueCount      int       `csv:"issue_count"`
	TotalRecords    int       `csv:"total_records"`
	IssuePercentage float64   `csv:"issue_percentage"`
	CheckPassed     bool      `csv:"check_passed"`
	Severity        string    `csv:"severity"`
	ErrorDetails    string    `csv:"error_details"`
	CreatedAt       time.Time `csv:"created_at"`
}

// CheckFailure is one failed check surfaced back to the caller.
type CheckFailure struct {
	Field      string
	Severity   Severity
	IssueCount int
	Details    string
}
