package decode

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

// Runner abstracts the external binaries the engines shell out to
// (poppler, tesseract, soffice), so tests substitute canned output for a
// process spawn.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	elapsed := time.Since(start)

	// log the bare binary name; configured paths may embed scratch dirs
	bin := filepath.Base(name)
	if err != nil {
		logger.Error("engine binary failed",
			"bin", bin,
			"argc", len(args),
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
			"stderr", truncate(stderr.String(), 8<<10),
		)
	} else {
		logger.Debug("engine binary done",
			"bin", bin,
			"argc", len(args),
			"elapsed_ms", elapsed.Milliseconds(),
			"stdout_bytes", stdout.Len(),
		)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
