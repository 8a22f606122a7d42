// Command reconcile is the headless validation run: load the registry CSV,
// scan the collection against it, print a summary, export the discrepancy
// report, and optionally apply every discrepant field in one batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/uqregistry/admissions-tracker/internal/common"
	"github.com/uqregistry/admissions-tracker/internal/console"
	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/reconcile"
	"github.com/uqregistry/admissions-tracker/internal/repository"
	"github.com/uqregistry/admissions-tracker/internal/update"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		csvPath    = flag.String("csv", "", "registry CSV path (overrides CSV_PATH)")
		reportPath = flag.String("report", "", "discrepancy report output path (overrides REPORT_PATH)")
		apply      = flag.Bool("apply", false, "apply every discrepant field without interactive review")
		yes        = flag.Bool("yes", false, "skip the confirmation prompt when --apply is set")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateDatabase(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	if *csvPath == "" {
		*csvPath = cfg.Dataset.CSVPath
	}
	if *reportPath == "" {
		*reportPath = cfg.Dataset.ReportPath
	}
	if err := reconcile.CheckFields(); err != nil {
		printError("Error: field table invalid: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loaded, err := dataset.Load(*csvPath, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	client, err := repository.Open(ctx, repository.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		PingTimeout:    cfg.Database.PingTimeout,
	}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer repository.Close(client, logger)

	repo := repository.NewAdmissionRepository(client, cfg.Database.Database, cfg.Database.Collection, logger)
	records, err := repo.FindAll(ctx)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	report := reconcile.Scan(records, loaded.Rows, logger)
	printSummary(report, loaded)

	if err := reconcile.ExportReport(*reportPath, report, logger); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nreport written to %s\n", *reportPath)

	if !*apply {
		return
	}

	var selections []update.Selection
	for _, res := range report.Discrepant() {
		selections = append(selections, update.Selection{
			AdmissionNumber: res.AdmissionNumber,
			Fields:          reconcile.Mismatches(res.Comparisons),
		})
	}
	if len(selections) == 0 {
		fmt.Println("nothing to apply")
		return
	}

	op := console.NewTerminal()
	if !*yes {
		ok, err := op.Confirm(fmt.Sprintf("apply registry values to %d record(s)?", len(selections)), false)
		if err != nil || !ok {
			fmt.Println("aborted, no records changed")
			return
		}
	}

	stats := update.Commit(ctx, repo, selections, op, logger)
	fmt.Printf("updated %d of %d record(s), %d failed\n", stats.Updated, stats.Total, stats.Failed)
	for _, f := range stats.Failures {
		fmt.Printf("  admission %d: %s\n", f.AdmissionNumber, f.Reason)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func printSummary(report *reconcile.ScanReport, loaded *dataset.LoadResult) {
	fmt.Printf("registry rows:        %d (%d skipped)\n", len(loaded.Rows), loaded.Skipped)
	fmt.Printf("records scanned:      %d\n", report.Total)
	fmt.Printf("perfect matches:      %d\n", report.PerfectMatches)
	fmt.Printf("with discrepancies:   %d\n", report.WithDiscrepancies)
	fmt.Printf("not in registry:      %d\n", report.Unmatched)

	if report.WithDiscrepancies == 0 {
		return
	}
	fmt.Println("\nmismatches by field:")
	for _, fd := range reconcile.Fields {
		n := report.FieldMismatches[fd.Name]
		if n == 0 {
			continue
		}
		fmt.Printf("  %-20s %4d (%.1f%%)\n", fd.Name, n, report.FieldMismatchRate(fd.Name))
	}
}
