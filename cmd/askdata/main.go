package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spektr-org/askdata/catalog"
	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/helpers"
	"github.com/spektr-org/askdata/pipeline"
	"github.com/spektr-org/askdata/translator"
)

// ============================================================================
// ASKDATA CLI — ask a question of a table
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to a .csv, .xlsx or .parquet file (built-in sample when empty)")
	s3URI := flag.String("s3", "", "Load the dataset from s3://bucket/key (uses the s3 config section)")
	sqlQuery := flag.String("sql", "", "Load the dataset from a Postgres query (uses postgres.dsn)")
	queryStr := flag.String("query", "", "Natural language question to answer")
	intentStr := flag.String("intent", "", "Structured intent JSON; skips the language model")
	format := flag.String("format", helpers.FormatJSON, "Output format: json, pretty, text, csv, table")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	configDir := flag.String("config", ".", "Directory containing askdata.yaml")
	listOps := flag.Bool("list-ops", false, "Print the operation catalog and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `AskData — ask questions of tabular data

Usage:
  askdata --query "total sales by region"
  askdata --file sales.csv --query "top 3 products by sales" --format table
  askdata --file sales.xlsx --intent '{"operation":"mean","target_column":"Sales"}'
  askdata --s3 s3://datasets/sales.parquet --query "describe the data" --format pretty

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  ASKDATA_LLM_API_KEY   API key for the configured provider (also OPENROUTER_API_KEY / GEMINI_API_KEY)
  ASKDATA_LLM_PROVIDER  openrouter (default) or gemini

Formats:
  json      Full JSON result (default)
  pretty    Pretty-printed JSON
  text      Human-readable message and values
  csv       Table data as CSV (ready for Sheets/Excel)
  table     ASCII table
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("askdata %s\n", version)
		os.Exit(0)
	}

	if *listOps {
		fmt.Println(catalog.DescribeAll())
		return
	}

	if *queryStr == "" && *intentStr == "" {
		fmt.Fprintln(os.Stderr, "Error: either --query or --intent is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ── Output writer ─────────────────────────────────────────────────────
	var writer io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Load data ─────────────────────────────────────────────────────────
	frame, err := loadFrame(ctx, cfg, *filePath, *s3URI, *sqlQuery)
	if err != nil {
		fatalf("Failed to load dataset: %v", err)
	}
	rows, cols := frame.Shape()
	log.Printf("📊 Loaded %d rows × %d columns", rows, cols)

	// ── Run ───────────────────────────────────────────────────────────────
	var res *engine.Result
	if *intentStr != "" {
		intent, err := translator.ParseIntent(*intentStr)
		if err != nil {
			fatalf("Invalid --intent: %v", err)
		}
		res = pipeline.New(nil).RunIntent(ctx, intent, frame)
	} else {
		t, err := translator.New(cfg.LLM.Translator())
		if err != nil {
			fatalf("Failed to create translator: %v", err)
		}
		res = pipeline.New(t).Run(ctx, *queryStr, frame)
	}

	// ── Render output ─────────────────────────────────────────────────────
	if err := helpers.Render(writer, res, *format); err != nil {
		fatalf("Failed to render output: %v", err)
	}
	if *outFile != "" {
		log.Printf("📄 Output written to %s", *outFile)
	}
	if res.Type == engine.ResultError {
		os.Exit(2)
	}
}

func loadFrame(ctx context.Context, cfg config.Config, path, s3URI, sqlQuery string) (*dataset.Frame, error) {
	switch {
	case s3URI != "":
		bucket, key, err := dataset.ParseS3URI(s3URI)
		if err != nil {
			return nil, err
		}
		return dataset.LoadS3(ctx, cfg.S3.Dataset(), bucket, key)
	case sqlQuery != "":
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("--sql requires postgres.dsn (or ASKDATA_POSTGRES_DSN)")
		}
		return dataset.LoadPostgres(ctx, cfg.Postgres.DSN, sqlQuery)
	case path != "":
		return dataset.LoadFile(path)
	}
	log.Printf("📋 No --file given, using the built-in sample dataset")
	return dataset.Sample(), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
