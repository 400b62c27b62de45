package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/opentender-mk/tender-extract/internal/common"
	"github.com/opentender-mk/tender-extract/internal/engine"
	"github.com/opentender-mk/tender-extract/internal/fieldspec"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir   = flag.String("dir", "", "directory of tender documents to decode (required)")
		out   = flag.String("out", "", "output JSON-lines file (defaults to <dir>/items.jsonl)")
		noOCR = flag.Bool("no-ocr", false, "disable the OCR engine")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "items.jsonl")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *noOCR {
		cfg.Decode.OCREnabled = false
	}

	eng, err := engine.New(cfg, logger, nil)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputs, err := collectInputs(*dir, logger)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		logger.Warn("no decodable documents found", "dir", *dir)
		return
	}
	logger.Info("starting batch", "dir", *dir, "documents", len(inputs))

	results := eng.ProcessBatch(ctx, inputs)

	outFile, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil {
			logger.Error("failed to close output file", "error", cerr)
		}
	}()

	enc := json.NewEncoder(outFile)
	var decoded, failed, itemCount int
	for _, res := range results {
		if res.Record.Status == constants.DecodeSuccess {
			decoded++
		} else {
			failed++
		}
		itemCount += len(res.Items)
		line := map[string]any{
			"input":  res.Input,
			"status": res.Record.Status,
			"engine": res.Record.Engine,
			"pages":  res.Record.Pages,
			"items":  res.Items,
		}
		if err := enc.Encode(line); err != nil {
			logger.Error("failed to write result", "input", res.Input, "error", err)
		}
	}

	snapshot := eng.Telemetry().Snapshot()
	for st, n := range snapshot.Documents {
		logger.Info("decode outcome", "status", st, "count", n)
	}
	alerts := eng.Telemetry().CheckAlerts(fieldspec.CriticalNames(fieldspec.TenderSpecs()), 0)
	for _, alert := range alerts {
		logger.Warn("critical field below threshold",
			"field", alert.Field, "rate", alert.Rate, "attempts", alert.Attempts)
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Documents decoded: %d\n", decoded)
	fmt.Printf("- Failures: %d\n", failed)
	fmt.Printf("- Line items: %d\n", itemCount)
	fmt.Printf("- Output: %s\n", *out)
}

func collectInputs(dir string, logger *slog.Logger) ([]engine.DocumentInput, error) {
	var inputs []engine.DocumentInput
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", rerr)
			return nil
		}
		inputs = append(inputs, engine.DocumentInput{Name: path, Data: data})
		return nil
	})
	return inputs, err
}
