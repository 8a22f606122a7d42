// Command admissions-tracker is the operator console for the burn-unit
// admissions pipeline: parse PDFs, extract structured records, import them
// into the collection, and validate the collection against the registry CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/uqregistry/admissions-tracker/internal/common"
	"github.com/uqregistry/admissions-tracker/internal/console"
	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/export"
	"github.com/uqregistry/admissions-tracker/internal/extract"
	"github.com/uqregistry/admissions-tracker/internal/importer"
	"github.com/uqregistry/admissions-tracker/internal/parse"
	"github.com/uqregistry/admissions-tracker/internal/reconcile"
	"github.com/uqregistry/admissions-tracker/internal/repository"
	"github.com/uqregistry/admissions-tracker/internal/status"
	"github.com/uqregistry/admissions-tracker/internal/update"
)

type app struct {
	cfg    *common.Config
	op     console.Operator
	logger *slog.Logger

	pdfDir string
	outDir string

	client *mongo.Client
	repo   repository.AdmissionRepository
}

func main() {
	var (
		pdfDir  = flag.String("pdf", "./pdf/input", "directory with admission PDFs")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	// logs go to stderr so the menu stays readable on stdout
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := reconcile.CheckFields(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: field table invalid: %v\n", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	a := &app{
		cfg:    cfg,
		op:     console.NewTerminal(),
		logger: logger,
		pdfDir: *pdfDir,
		outDir: cfg.Parser.OutputDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.run(ctx)

	if a.client != nil {
		repository.Close(a.client, logger)
	}
}

func (a *app) run(ctx context.Context) {
	for {
		a.op.Printf("\n=== admissions tracker ===\n")
		a.op.Printf("  1) parse PDFs to markdown\n")
		a.op.Printf("  2) extract structured records\n")
		a.op.Printf("  3) import extractions into the collection\n")
		a.op.Printf("  4) pipeline status\n")
		a.op.Printf("  5) validate against registry CSV\n")
		a.op.Printf("  6) review and update discrepancies\n")
		a.op.Printf("  7) export collection to XLSX\n")
		a.op.Printf("  q) quit\n")

		choice, err := a.op.Choose("select", []string{"1", "2", "3", "4", "5", "6", "7", "q"}, "q")
		if err != nil {
			return
		}

		var cmdErr error
		switch choice {
		case "1":
			cmdErr = a.parsePDFs(ctx)
		case "2":
			cmdErr = a.extractRecords(ctx)
		case "3":
			cmdErr = a.importExtractions(ctx)
		case "4":
			cmdErr = a.showStatus(ctx)
		case "5":
			cmdErr = a.validate(ctx)
		case "6":
			cmdErr = a.reviewAndUpdate(ctx)
		case "7":
			cmdErr = a.exportXLSX(ctx)
		case "q":
			a.op.Printf("bye\n")
			return
		}
		if cmdErr != nil {
			a.op.Printf("error: %v\n", cmdErr)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// ensureDB connects on first use so the parsing and extraction stages work
// without a reachable database.
func (a *app) ensureDB(ctx context.Context) (repository.AdmissionRepository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	if err := a.cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	client, err := repository.Open(ctx, repository.Config{
		URI:            a.cfg.Database.URI,
		Database:       a.cfg.Database.Database,
		ConnectTimeout: a.cfg.Database.ConnectTimeout,
		PingTimeout:    a.cfg.Database.PingTimeout,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.repo = repository.NewAdmissionRepository(client, a.cfg.Database.Database, a.cfg.Database.Collection, a.logger)
	if err := a.repo.EnsureIndexes(ctx); err != nil {
		a.logger.Warn("ensure indexes failed", "error", err)
	}
	return a.repo, nil
}

func (a *app) parsePDFs(ctx context.Context) error {
	if err := a.cfg.ValidateParsing(); err != nil {
		return err
	}
	client := parse.NewClient(parse.Config{
		APIKey:       a.cfg.Parser.APIKey,
		BaseURL:      a.cfg.Parser.BaseURL,
		Language:     a.cfg.Parser.Language,
		PollInterval: a.cfg.Parser.PollInterval,
		JobTimeout:   a.cfg.Parser.JobTimeout,
	}, a.logger)

	a.op.Printf("parsing PDFs from %s into %s\n", a.pdfDir, a.outDir)
	stats, err := client.ProcessDirectory(ctx, a.pdfDir, a.outDir)
	if err != nil {
		return err
	}
	a.op.Printf("subjects=%d parsed=%d skipped=%d failed=%d\n",
		stats.Subjects, stats.Parsed, stats.Skipped, stats.Failed)
	for _, id := range stats.FailedIDs {
		a.op.Printf("  failed: %s\n", id)
	}
	return nil
}

func (a *app) extractRecords(ctx context.Context) error {
	if err := a.cfg.ValidateExtraction(); err != nil {
		return err
	}

	report, err := status.Scan(ctx, a.outDir, nil, a.logger)
	if err != nil {
		return err
	}
	pending := report.NotExtracted()
	if len(pending) == 0 {
		a.op.Printf("every parsed subject already has an extraction\n")
		return nil
	}
	a.op.Printf("%d subject(s) pending extraction: %v\n", len(pending), pending)
	ok, err := a.op.Confirm("run extraction now?", true)
	if err != nil || !ok {
		return err
	}

	client := extract.NewGeminiClient(extract.Config{
		Model:       a.cfg.LLM.Model,
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Temperature: a.cfg.LLM.Temperature,
		Timeout:     a.cfg.LLM.Timeout,
	}, a.logger)
	svc := extract.NewService(client, a.outDir, a.logger)

	stats := svc.ExtractBatch(ctx, pending, false)
	a.op.Printf("extracted=%d skipped=%d failed=%d\n", stats.Extracted, stats.Skipped, stats.Failed)
	for _, id := range stats.FailedIDs {
		a.op.Printf("  failed: %s\n", id)
	}
	return nil
}

func (a *app) importExtractions(ctx context.Context) error {
	repo, err := a.ensureDB(ctx)
	if err != nil {
		return err
	}
	im := importer.NewImporter(repo, a.logger)
	stats, err := im.ImportDirectory(ctx, a.outDir)
	if err != nil {
		return err
	}
	a.op.Printf("files=%d imported=%d skipped=%d failed=%d\n",
		stats.Total, stats.Imported, stats.Skipped, stats.Failed)
	for _, r := range stats.Results {
		if r.Err != "" {
			a.op.Printf("  %s: %s\n", r.Path, r.Err)
		}
	}
	return nil
}

func (a *app) showStatus(ctx context.Context) error {
	// import status needs the DB, but a scan without it is still useful
	var store status.Store
	if repo, err := a.ensureDB(ctx); err == nil {
		store = repo
	} else {
		a.op.Printf("database unavailable, import status not checked (%v)\n", err)
	}

	report, err := status.Scan(ctx, a.outDir, store, a.logger)
	if err != nil {
		return err
	}
	a.op.Printf("subjects=%d parsed=%d extracted=%d imported=%d\n",
		len(report.Subjects), report.Parsed, report.Extracted, report.Imported)
	for _, s := range report.Subjects {
		a.op.Printf("  %s  parsed=%-5v extracted=%-5v imported=%-5v\n",
			s.ID, s.Parsed, s.Extracted, s.Imported)
	}
	return nil
}

// scanAgainstRegistry is the shared first half of validate and review.
func (a *app) scanAgainstRegistry(ctx context.Context) (*reconcile.ScanReport, repository.AdmissionRepository, error) {
	repo, err := a.ensureDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	loaded, err := dataset.Load(a.cfg.Dataset.CSVPath, a.logger)
	if err != nil {
		return nil, nil, err
	}
	records, err := repo.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.op.Printf("registry rows=%d (skipped=%d), records=%d\n",
		len(loaded.Rows), loaded.Skipped, len(records))
	return reconcile.Scan(records, loaded.Rows, a.logger), repo, nil
}

func (a *app) validate(ctx context.Context) error {
	report, _, err := a.scanAgainstRegistry(ctx)
	if err != nil {
		return err
	}
	a.op.Printf("perfect=%d discrepant=%d unmatched=%d\n",
		report.PerfectMatches, report.WithDiscrepancies, report.Unmatched)
	for _, fd := range reconcile.Fields {
		if n := report.FieldMismatches[fd.Name]; n > 0 {
			a.op.Printf("  %-20s %4d (%.1f%%)\n", fd.Name, n, report.FieldMismatchRate(fd.Name))
		}
	}

	if err := reconcile.ExportReport(a.cfg.Dataset.ReportPath, report, a.logger); err != nil {
		return err
	}
	a.op.Printf("report written to %s\n", a.cfg.Dataset.ReportPath)
	return nil
}

func (a *app) reviewAndUpdate(ctx context.Context) error {
	report, repo, err := a.scanAgainstRegistry(ctx)
	if err != nil {
		return err
	}

	selections, err := update.SelectUpdates(a.op, report.Results)
	if err != nil {
		return err
	}
	if len(selections) == 0 {
		a.op.Printf("nothing selected, no records changed\n")
		return nil
	}

	ok, err := a.op.Confirm(fmt.Sprintf("commit updates to %d record(s)?", len(selections)), false)
	if err != nil {
		return err
	}
	if !ok {
		a.op.Printf("aborted, no records changed\n")
		return nil
	}

	stats := update.Commit(ctx, repo, selections, a.op, a.logger)
	a.op.Printf("updated=%d failed=%d\n", stats.Updated, stats.Failed)
	for _, f := range stats.Failures {
		a.op.Printf("  admission %d: %s\n", f.AdmissionNumber, f.Reason)
	}
	return nil
}

func (a *app) exportXLSX(ctx context.Context) error {
	repo, err := a.ensureDB(ctx)
	if err != nil {
		return err
	}
	svc := export.NewService(repo, a.logger)
	data, err := svc.ExportAdmissionsXLSX(ctx)
	if err != nil {
		return err
	}

	path, err := a.op.AskLine("output path (default ./reports/admissions.xlsx)")
	if err != nil {
		return err
	}
	if path == "" {
		path = "./reports/admissions.xlsx"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	a.op.Printf("workbook written to %s\n", path)
	return nil
}
