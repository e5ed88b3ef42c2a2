package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/secfsds/bronze/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

type qualityLogRepository struct {
	db *sql.DB
}

// NewQualityLogRepository wires the append-only audit log. Entries are never
// updated or deleted; log_id comes from the store's own sequence so it stays
// monotonic across process restarts.
func NewQualityLogRepository(db *sql.DB) QualityLogRepository {
	return &qualityLogRepository{db: db}
}

func (r *qualityLogRepository) Record(ctx context.Context, entry domain.QualityLogEntry) error {
	if r.db == nil {
		return fmt.Errorf("quality log repository not initialized")
	}

	var details any
	if entry.ErrorDetails != "" {
		details = entry.ErrorDetails
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO data_quality_log (
			table_name, data_quarter, load_timestamp,
			check_category, check_type, field_name,
			issue_count, total_records, issue_percentage,
			check_passed, severity, error_details
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TableName,
		entry.Quarter,
		entry.LoadTimestamp.Format(timestampLayout),
		entry.CheckCategory,
		entry.CheckType,
		entry.FieldName,
		entry.IssueCount,
		entry.TotalRecords,
		entry.IssuePercentage,
		entry.CheckPassed,
		string(entry.Severity),
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to record quality log entry: %w", err)
	}
	return nil
}

func (r *qualityLogRepository) List(ctx context.Context, filter QualityLogFilter) ([]domain.QualityLogEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("quality log repository not initialized")
	}

	query := `SELECT log_id, table_name, data_quarter, load_timestamp,
		check_category, check_type, field_name,
		issue_count, total_records, issue_percentage,
		check_passed, severity, error_details, created_at
	FROM data_quality_log`

	var clauses []string
	var args []any
	if filter.Quarter != "" {
		clauses = append(clauses, "data_quarter = ?")
		args = append(args, filter.Quarter)
	}
	if filter.TableName != "" {
		clauses = append(clauses, "table_name = ?")
		args = append(args, filter.TableName)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY log_id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quality log entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.QualityLogEntry{}
	for rows.Next() {
		var (
			entry         domain.QualityLogEntry
			loadTimestamp string
			createdAt     string
			details       sql.NullString
		)
		if err := rows.Scan(
			&entry.LogID,
			&entry.TableName,
			&entry.Quarter,
			&loadTimestamp,
			&entry.CheckCategory,
			&entry.CheckType,
			&entry.FieldName,
			&entry.IssueCount,
			&entry.TotalRecords,
			&entry.IssuePercentage,
			&entry.CheckPassed,
			&entry.Severity,
			&details,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quality log entry: %w", err)
		}
		if details.Valid {
			entry.ErrorDetails = details.String
		}
		entry.LoadTimestamp = parseStoredTime(loadTimestamp)
		entry.CreatedAt = parseStoredTime(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quality log entries: %w", err)
	}
	return entries, nil
}

func parseStoredTime(value string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05.999999999-07:00"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
