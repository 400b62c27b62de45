package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/opentender-mk/tender-extract/internal/common"
	"github.com/opentender-mk/tender-extract/internal/engine"
	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/resolver"
	"github.com/opentender-mk/tender-extract/internal/schema"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file    = flag.String("file", "", "path to a saved notice page (required)")
		pageURL = flag.String("url", "", "original URL of the page, for URL-parameter strategies")
		debug   = flag.Bool("debug", false, "log at debug level")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	html, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read page", "file", *file, "error", err)
		os.Exit(1)
	}

	page, err := resolver.ParsePage(string(html), *pageURL)
	if err != nil {
		logger.Error("failed to parse page", "file", *file, "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(common.LoadConfig(), logger, nil)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	result := eng.ProcessPage(page, fieldspec.TenderSpecs())
	if result.SchemaErr != nil {
		logger.Warn("record is incomplete", "error", result.SchemaErr)
	}

	out := schema.ToWire(result.Record)
	out["inferred_status"] = string(result.Status)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to encode record", "error", err)
		os.Exit(1)
	}

	for _, outcome := range result.Outcomes {
		if outcome.Value == nil {
			logger.Info("field unresolved", "field", outcome.Field)
		}
	}
}
