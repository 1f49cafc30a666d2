// Package main implements the cqm-eval CLI tool.
// It evaluates a panel of subjects against the breast cancer screening
// measure from a JSON fixture of subjects, clinical records, coverages,
// and cadence overrides.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/engine"
	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/measure"
	"github.com/gofhir/cqm/override"
	"github.com/gofhir/cqm/pkg/logger"
	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
	"github.com/gofhir/cqm/worker"
)

const usage = `cqm-eval - Quality Measure Evaluator

Usage:
  cqm-eval [options] <fixture.json>
  cqm-eval [options] -            (read fixture from stdin)

The fixture is a JSON document:
  {
    "subjects":  [...],
    "records":   [...],
    "coverages": [...],
    "overrides": [...]
  }

Examples:
  cqm-eval panel.json
  cqm-eval -period-end 2026-12-31 -months 12 panel.json
  cqm-eval -valuesets ./vocab -output json panel.json
  cat panel.json | cqm-eval -

Options:
`

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration
type Config struct {
	PeriodEnd    string
	Months       int
	ValueSetsDir string
	Output       OutputFormat
	Workers      int
	Quiet        bool
	Verbose      bool
	ShowVersion  bool
	Help         bool
	File         string
}

// RunOutput is the JSON output structure.
type RunOutput struct {
	Measure  string          `json:"measure"`
	Period   string          `json:"period"`
	Total    int             `json:"total"`
	Results  []*cqm.Result   `json:"results"`
	Errors   []ErrorOutput   `json:"errors,omitempty"`
	Metrics  *cqm.Snapshot   `json:"metrics,omitempty"`
	Duration string          `json:"duration"`
}

// ErrorOutput is one failed subject in JSON output.
type ErrorOutput struct {
	SubjectID string `json:"subjectId"`
	Error     string `json:"error"`
}

type fixture struct {
	Subjects  []gateway.Subject        `json:"subjects"`
	Records   []gateway.ClinicalRecord `json:"records"`
	Coverages []gateway.Coverage       `json:"coverages"`
	Overrides []override.Override      `json:"overrides"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("cqm-eval v%s\n", cqm.Version)
		os.Exit(0)
	}

	if config.Help || config.File == "" {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{Output: OutputText}

	var output string

	flag.StringVar(&config.PeriodEnd, "period-end", "", "Measurement period end date (YYYY-MM-DD, default today)")
	flag.IntVar(&config.Months, "months", 12, "Measurement period length in months")
	flag.StringVar(&config.ValueSetsDir, "valuesets", "", "Directory of FHIR ValueSet JSON files to load in addition to the builtin vocabularies")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.IntVar(&config.Workers, "workers", 0, "Worker count for batch evaluation (0 = number of CPUs)")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only show the summary line")
	flag.BoolVar(&config.Verbose, "verbose", false, "Show debug logging and per-rule metrics")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputText
	}

	if args := flag.Args(); len(args) > 0 {
		config.File = args[0]
	}

	return config
}

func run(config *Config) int {
	if config.Verbose {
		logger.SetLevel(logger.LevelDebug)
	} else if config.Quiet {
		logger.SetLevel(logger.LevelError)
	}

	period, err := buildPeriod(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fix, err := loadFixture(config.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	registry := valueset.Builtin()
	if config.ValueSetsDir != "" {
		stats, err := registry.LoadDir(config.ValueSetsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load value sets: %v\n", err)
			return 1
		}
		logger.Debug("loaded %d value sets from %s (%d files skipped)", stats.ValueSetsLoaded, config.ValueSetsDir, stats.FilesSkipped)
	}

	mem := gateway.NewMemory()
	for _, s := range fix.Subjects {
		mem.AddSubject(s)
	}
	for _, r := range fix.Records {
		mem.AddRecord(r)
	}
	for _, c := range fix.Coverages {
		mem.AddCoverage(c)
	}

	store := override.NewMemoryStore()
	for _, o := range fix.Overrides {
		store.Add(o)
	}

	eval, err := engine.New(
		measure.BreastCancerScreening(),
		mem,
		override.NewResolver(store),
		registry,
		cqm.WithWorkerCount(config.Workers),
		cqm.WithMetrics(config.Verbose),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build evaluator: %v\n", err)
		return 1
	}

	panel := mem.SubjectIDs()
	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Evaluating %d subject(s) over %s...\n\n", len(panel), period)
	}

	start := time.Now()
	batch := worker.NewBatchEvaluator(eval, config.Workers).EvaluateBatch(context.Background(), panel, period)
	elapsed := time.Since(start)

	printResults(config, eval, batch, period, elapsed)

	if batch.HasErrors() {
		return 1
	}
	return 0
}

// buildPeriod derives the measurement period from the flags: the configured
// number of months ending on the period-end date, inclusive.
func buildPeriod(config *Config) (timeframe.Timeframe, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if config.PeriodEnd != "" {
		parsed, err := time.Parse("2006-01-02", config.PeriodEnd)
		if err != nil {
			return timeframe.Timeframe{}, fmt.Errorf("invalid -period-end %q: %w", config.PeriodEnd, err)
		}
		end = parsed
	}
	if config.Months <= 0 {
		return timeframe.Timeframe{}, fmt.Errorf("invalid -months %d", config.Months)
	}
	return timeframe.New(end.AddDate(0, -config.Months, 0), end)
}

func loadFixture(path string) (*fixture, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var fix fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fix, nil
}

func printResults(config *Config, eval *engine.Evaluator, batch *worker.BatchResult, period timeframe.Timeframe, elapsed time.Duration) {
	if config.Output == OutputJSON {
		out := RunOutput{
			Measure:  eval.Definition().Key,
			Period:   period.String(),
			Total:    batch.Total,
			Results:  batch.Results,
			Duration: elapsed.Round(time.Microsecond).String(),
		}
		for _, se := range batch.Errors {
			out.Errors = append(out.Errors, ErrorOutput{SubjectID: se.SubjectID, Error: se.Err.Error()})
		}
		if config.Verbose {
			snapshot := eval.Metrics().Snapshot()
			out.Metrics = &snapshot
		}
		encoded, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	if !config.Quiet {
		for _, r := range batch.Results {
			fmt.Println(r)
		}
		for _, se := range batch.Errors {
			fmt.Printf("%s: ERROR %v\n", se.SubjectID, se.Err)
		}
		fmt.Println()
	}

	fmt.Printf("Total: %d, Satisfied: %d, Due: %d, Not applicable: %d, Failed: %d (%s)\n",
		batch.Total,
		batch.CountByStatus(cqm.StatusSatisfied),
		batch.CountByStatus(cqm.StatusDue),
		batch.CountByStatus(cqm.StatusNotApplicable),
		batch.Failed,
		elapsed.Round(time.Microsecond))

	if config.Verbose {
		snapshot := eval.Metrics().Snapshot()
		fmt.Printf("Avg evaluation: %s, rules:\n", snapshot.AvgTime)
		for _, rule := range snapshot.Rules {
			fmt.Printf("  %-14s invocations=%d matches=%d avg=%s\n",
				rule.Name, rule.Invocations, rule.Matches, rule.AvgTime)
		}
	}
}
