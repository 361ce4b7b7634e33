package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agroinvest/internal/config"
	"agroinvest/internal/dataset"
	"agroinvest/internal/exporter"
	"agroinvest/internal/infrastructure"
	"agroinvest/internal/services"
	"agroinvest/internal/validation"
	"agroinvest/pkg/contracts"
	api "agroinvest/pkg/contracts/api/v1"
)

type options struct {
	configPath string
	dataPath   string
	outputDir  string
	format     string
	prefix     string
	countries  []string
	categories []string
	yearFrom   int
	yearTo     int
	sizeBand   string
	version    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	paths, err := run(context.Background(), cfg, opts, logger)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Opportunity report failed")
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Println(p)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("opportunity-report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var countries, categories string
	fs.StringVar(&opts.configPath, "config", "", "config file (defaults to the usual search path)")
	fs.StringVar(&opts.dataPath, "data", "", "dataset file (.yaml, .yml or .xlsx); defaults to the configured or embedded dataset")
	fs.StringVar(&opts.outputDir, "out", "reports", "output directory")
	fs.StringVar(&opts.format, "format", "xlsx", "output format: xlsx or csv")
	fs.StringVar(&opts.prefix, "prefix", "", "output file name prefix (defaults to opportunity_report_<date>)")
	fs.StringVar(&countries, "countries", "", "comma-separated country codes or names")
	fs.StringVar(&categories, "categories", "", "comma-separated commodity categories")
	fs.IntVar(&opts.yearFrom, "from", 0, "first year of the analysis window")
	fs.IntVar(&opts.yearTo, "to", 0, "last year of the analysis window")
	fs.StringVar(&opts.sizeBand, "size", "", "investment size band: small, medium or large")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.format != "xlsx" && opts.format != "csv" {
		err := fmt.Errorf("invalid format %q: must be xlsx or csv", opts.format)
		fmt.Fprintln(stderr, err)
		return options{}, err
	}
	if opts.prefix == "" {
		opts.prefix = "opportunity_report_" + time.Now().Format("20060102")
	}
	opts.countries = splitList(countries)
	opts.categories = splitList(categories)
	return opts, nil
}

// run builds the report and writes it, returning the written paths. Every
// log line of one run shares a trace ID.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) ([]string, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.WithComponent(logger, "opportunity_report")

	dataPath := cfg.Dataset.Path
	if opts.dataPath != "" {
		dataPath = opts.dataPath
	}

	fv := validation.NewFileValidator(logger)
	if dataPath != "" {
		if err := fv.ValidateDatasetFile(dataPath); err != nil {
			return nil, err
		}
	}
	if err := fv.ValidateOutputDirectory(opts.outputDir); err != nil {
		return nil, err
	}

	model, err := dataset.NewLoader(logger).Load(ctx, dataPath)
	if err != nil {
		return nil, err
	}

	source := dataPath
	if source == "" {
		source = "embedded"
	}
	svc, err := services.NewInvestmentService(model, source, cfg.Analysis, nil, logger)
	if err != nil {
		return nil, err
	}

	report, err := svc.BuildReport(ctx, services.Criteria(api.SelectionRequest{
		Countries:  opts.countries,
		Categories: opts.categories,
		YearFrom:   opts.yearFrom,
		YearTo:     opts.yearTo,
		SizeBand:   opts.sizeBand,
	}))
	if err != nil {
		return nil, err
	}

	for _, w := range report.Warnings {
		logger.WarnContext(ctx, "Selection warning", "kind", string(w.Kind), "value", w.Value)
	}

	if opts.format == "csv" {
		return exporter.NewReportExporter(opts.outputDir).ExportCSV(report, opts.prefix)
	}

	path := filepath.Join(opts.outputDir, opts.prefix+".xlsx")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create workbook: %w", err)
	}
	if err := exporter.WriteXLSX(f, report); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}

	logger.InfoContext(ctx, "Opportunity report written",
		"path", path,
		"opportunities", len(report.Opportunities),
		"findings", len(report.Gaps.Findings))
	return []string{path}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
