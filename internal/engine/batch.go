package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DocumentInput is one binary document to decode. Name is an opaque caller
// identifier carried through to the result for correlation.
type DocumentInput struct {
	Name     string
	Data     []byte
	MimeHint string
}

// ProcessBatch decodes a batch of documents over the standard worker pool.
// Documents are independent; no ordering is guaranteed beyond result slots
// matching input slots. A batch of N inputs always yields N results, each
// carrying its own terminal status. Cancelling ctx stops unstarted work;
// telemetry recorded for documents that already finished stands.
func (e *Engine) ProcessBatch(ctx context.Context, inputs []DocumentInput) []DocumentResult {
	results := make([]DocumentResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers.Standard)

	for i, input := range inputs {
		g.Go(func() error {
			res := e.ProcessDocument(gctx, input.Data, input.MimeHint)
			res.Input = input.Name
			results[i] = res
			return nil
		})
	}
	// workers never return errors; Wait only synchronizes completion
	_ = g.Wait()
	return results
}
