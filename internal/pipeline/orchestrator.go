// Package pipeline drives one quarter's load: for each configured file type,
// in a fixed order, read the raw file, coerce and append it, and audit the
// result.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/secfsds/bronze/internal/domain"
	"github.com/secfsds/bronze/internal/loader"
	"github.com/secfsds/bronze/internal/reader"
	"github.com/secfsds/bronze/internal/schema"
)

// Orchestrator owns the lifecycle of a load operation. Quarters are processed
// strictly sequentially; the store handle behind the loader is shared for the
// duration of one quarter and holds no state across quarters.
type Orchestrator struct {
	registry  *schema.Registry
	loader    *loader.Loader
	dataRoot  string
	fileTypes map[domain.FileType]bool
	log       *zap.Logger
}

// NewOrchestrator configures a load pipeline. fileTypes restricts which of
// the four extracts are loaded; an empty list means all of them.
func NewOrchestrator(registry *schema.Registry, l *loader.Loader, dataRoot string, fileTypes []domain.FileType, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	enabled := make(map[domain.FileType]bool, len(fileTypes))
	for _, ft := range fileTypes {
		enabled[ft] = true
	}
	if len(enabled) == 0 {
		for _, ft := range domain.LoadOrder {
			enabled[ft] = true
		}
	}
	return &Orchestrator{
		registry:  registry,
		loader:    l,
		dataRoot:  dataRoot,
		fileTypes: enabled,
		log:       log,
	}
}

// LoadQuarter loads every configured file type for one quarter. A fatal error
// in any file type aborts the quarter immediately; quality-check failures are
// recorded in the report, never raised.
func (o *Orchestrator) LoadQuarter(ctx context.Context, quarter string) (domain.QuarterReport, error) {
	report := domain.QuarterReport{Quarter: quarter}
	quarterDir := filepath.Join(o.dataRoot, quarter)
	loadTimestamp := time.Now()

	o.log.Info("loading quarter", zap.String("quarter", quarter), zap.String("dir", quarterDir))

	for _, ft := range domain.LoadOrder {
		if !o.fileTypes[ft] {
			continue
		}

		spec, err := o.registry.Spec(ft)
		if err != nil {
			return report, fmt.Errorf("quarter %s: %w", quarter, err)
		}

		rs, err := reader.Read(filepath.Join(quarterDir, spec.FileName), spec, quarter, loadTimestamp)
		if err != nil {
			return report, fmt.Errorf("quarter %s, file type %s: %w", quarter, ft, err)
		}

		result, err := o.loader.Load(ctx, spec, rs)
		if err != nil {
			return report, fmt.Errorf("quarter %s, file type %s: %w", quarter, ft, err)
		}
		report.Results = append(report.Results, result)
	}

	o.log.Info("quarter loaded",
		zap.String("quarter", quarter),
		zap.Int("rows", report.TotalRows()),
		zap.Int("quality_failures", len(report.Failures())),
	)
	return report, nil
}
