// Command bronze loads quarterly financial-disclosure extracts into the
// bronze analytic store and exports quality audit reports.
//
// Usage:
//
//	bronze [-config dir] load
//	bronze [-config dir] report [-quarter 2024q4] [-format csv|xlsx]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/secfsds/bronze/internal/config"
	"github.com/secfsds/bronze/internal/db"
	"github.com/secfsds/bronze/internal/export"
	"github.com/secfsds/bronze/internal/loader"
	"github.com/secfsds/bronze/internal/logging"
	"github.com/secfsds/bronze/internal/pipeline"
	"github.com/secfsds/bronze/internal/quality"
	"github.com/secfsds/bronze/internal/repository"
	"github.com/secfsds/bronze/internal/schema"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "load"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open analytic store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := db.Migrate(store); err != nil {
		logger.Fatal("failed to apply store migrations", zap.Error(err))
	}

	bronzeRepo := repository.NewBronzeRepository(store)
	logRepo := repository.NewQualityLogRepository(store)

	switch command {
	case "load":
		if err := runLoad(ctx, cfg, bronzeRepo, logRepo, logger); err != nil {
			logger.Fatal("load failed", zap.Error(err))
		}
	case "report":
		if err := runReport(ctx, cfg, logRepo, logger, args); err != nil {
			logger.Fatal("report failed", zap.Error(err))
		}
	default:
		logger.Fatal("unknown command", zap.String("command", command))
	}
}

func runLoad(ctx context.Context, cfg config.Config, bronzeRepo repository.BronzeRepository, logRepo repository.QualityLogRepository, logger *zap.Logger) error {
	auditor := quality.NewAuditor(bronzeRepo, logRepo, logger)
	l := loader.NewLoader(bronzeRepo, auditor, logger)
	orch := pipeline.NewOrchestrator(schema.NewRegistry(), l, cfg.DataRoot, cfg.FileTypes, logger)

	for _, quarter := range cfg.Quarters {
		report, err := orch.LoadQuarter(ctx, quarter)
		if err != nil {
			return err
		}
		for _, result := range report.Results {
			fmt.Printf("  %s: %d rows", result.Table, result.Rows)
			if len(result.Failures) > 0 {
				fmt.Printf(" (%d quality issues)", len(result.Failures))
			}
			fmt.Println()
		}
		for _, failure := range report.Failures() {
			fmt.Printf("  [%s] %s: %d issues - %s\n", failure.Severity, failure.Field, failure.IssueCount, failure.Details)
		}
	}
	return nil
}

func runReport(ctx context.Context, cfg config.Config, logRepo repository.QualityLogRepository, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	quarter := fs.String("quarter", "", "restrict the report to one quarter")
	format := fs.String("format", "csv", "report format: csv or xlsx")
	if err := fs.Parse(args); err != nil {
		return err
	}

	service := export.NewService(logRepo, logger)
	filter := repository.QualityLogFilter{Quarter: *quarter}

	var (
		path string
		err  error
	)
	switch *format {
	case "csv":
		path, err = service.ExportCSV(ctx, cfg.ReportDir, filter)
	case "xlsx":
		path, err = service.ExportXLSX(ctx, cfg.ReportDir, filter)
	default:
		return fmt.Errorf("unknown report format %q", *format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", path)
	return nil
}
