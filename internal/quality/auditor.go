// Package quality evaluates data-quality checks after a load and appends
// every verdict, pass or fail, to the permanent audit log.
package quality

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/secfsds/bronze/internal/domain"
	"github.com/secfsds/bronze/internal/repository"
)

// warningThreshold caps the tolerated issue percentage for WARNING checks.
// The comparison is strict: exactly 5.0 percent fails.
const warningThreshold = 5.0

// Request carries everything the auditor needs for one load invocation.
type Request struct {
	Table         string
	Quarter       string
	LoadTimestamp time.Time
	Checks        []domain.QualityCheck
	TotalRecords  int

	// SourceNullCounts is the pre-coercion null baseline per field. A field
	// missing from the map defaults to zero, which can only overcount issues.
	SourceNullCounts map[string]int
}

// Auditor computes, logs, and reports quality checks.
type Auditor struct {
	bronze  repository.BronzeRepository
	logRepo repository.QualityLogRepository
	log     *zap.Logger
}

// NewAuditor creates an auditor backed by the bronze tables and the audit log.
func NewAuditor(bronze repository.BronzeRepository, logRepo repository.QualityLogRepository, log *zap.Logger) *Auditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{bronze: bronze, logRepo: logRepo, log: log}
}

// Run evaluates every check in the request. Each check is logged whether it
// passed or not; failures are additionally returned to the caller. A check
// with an unrecognized category is skipped, not fatal. Data-level defects
// never surface as errors, only store failures do.
func (a *Auditor) Run(ctx context.Context, req Request) ([]domain.CheckFailure, error) {
	var failures []domain.CheckFailure

	for _, chk := range req.Checks {
		var (
			total      int
			issueCount int
			details    string
		)

		switch chk.Category {
		case domain.CheckCategoryNull:
			partitionTotal, nulls, err := a.bronze.PartitionFieldNulls(ctx, req.Table, chk.Field, req.Quarter)
			if err != nil {
				return failures, err
			}
			total = partitionTotal
			issueCount = nulls
			if issueCount > 0 {
				details = fmt.Sprintf("%d NULL values found in %s", issueCount, chk.Field)
			}

		case domain.CheckCategoryTypeConversion:
			partitionTotal, targetNulls, err := a.bronze.PartitionFieldNulls(ctx, req.Table, chk.Field, req.Quarter)
			if err != nil {
				return failures, err
			}
			total = partitionTotal
			sourceNulls := req.SourceNullCounts[chk.Field]

			// Nulls that exist in the destination but not in the source are
			// the casts that silently failed.
			issueCount = targetNulls - sourceNulls
			if issueCount < 0 {
				issueCount = 0
			}
			if issueCount > 0 {
				details = fmt.Sprintf("%d %s failures in %s (source NULLs: %d, target NULLs: %d)",
					issueCount, strings.ReplaceAll(chk.CheckType, "_", " "), chk.Field, sourceNulls, targetNulls)
			}

		default:
			a.log.Warn("skipping check with unknown category",
				zap.String("category", string(chk.Category)),
				zap.String("field", chk.Field),
			)
			continue
		}

		percentage := 0.0
		if total > 0 {
			percentage = float64(issueCount) / float64(total) * 100
		}
		percentage = math.Round(percentage*100) / 100

		var passed bool
		if chk.Severity == domain.SeverityCritical {
			passed = issueCount == 0
		} else {
			passed = percentage < warningThreshold
		}

		entry := domain.QualityLogEntry{
			TableName:       req.Table,
			Quarter:         req.Quarter,
			LoadTimestamp:   req.LoadTimestamp,
			CheckCategory:   string(chk.Category),
			CheckType:       chk.CheckType,
			FieldName:       chk.Field,
			IssueCount:      issueCount,
			TotalRecords:    req.TotalRecords,
			IssuePercentage: percentage,
			CheckPassed:     passed,
			Severity:        string(chk.Severity),
			ErrorDetails:    details,
		}
		if err := a.logRepo.Record(ctx, entry); err != nil {
			return failures, err
		}

		if !passed {
			failures = append(failures, domain.CheckFailure{
				Field:      chk.Field,
				Severity:   chk.Severity,
				IssueCount: issueCount,
				Details:    details,
			})
		}
	}

	if len(failures) > 0 {
		for _, f := range failures {
			a.log.Warn("data quality check failed",
				zap.String("table", req.Table),
				zap.String("quarter", req.Quarter),
				zap.String("field", f.Field),
				zap.String("severity", string(f.Severity)),
				zap.Int("issues", f.IssueCount),
			)
		}
	} else {
		a.log.Info("all data quality checks passed",
			zap.String("table", req.Table),
			zap.String("quarter", req.Quarter),
			zap.Int("checks", len(req.Checks)),
		)
	}

	return failures, nil
}
