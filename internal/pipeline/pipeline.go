// Package pipeline runs extraction, replay and encoding as one pass over an
// archive.
package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/freeeve/pgntensor/internal/dataset"
	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/replay"
)

// errStop ends the run early without reporting a failure.
var errStop = errors.New("pipeline stopped")

// Pipeline wires the three stages together.
type Pipeline struct {
	Extract record.ExtractConfig
	Replay  *replay.Stage
	Encoder *dataset.Encoder
	// Buffer is the number of records queued between reader and replayer.
	Buffer int
}

// Run reads src to the end (or until the batch limit) and flushes the final
// batch. Records are replayed in archive order by a single consumer, so
// samples keep archive order.
func (p *Pipeline) Run(ctx context.Context, src record.LineSource) error {
	buffer := p.Buffer
	if buffer <= 0 {
		buffer = 128
	}

	g, ctx := errgroup.WithContext(ctx)
	records := make(chan record.GameRecord, buffer)

	g.Go(func() error {
		err := record.Extract(ctx, src, p.Extract, func(rec record.GameRecord) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case records <- rec:
				return nil
			}
		})
		// on failure the channel stays open and the consumer exits on
		// cancellation, so a partial batch is never flushed
		if err == nil {
			close(records)
		}
		return err
	})

	g.Go(func() error {
		emit := func(fen string, outcome record.Outcome) error {
			return p.Encoder.AddPosition(ctx, fen, outcome)
		}
		for {
			var rec record.GameRecord
			var ok bool
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rec, ok = <-records:
			}
			if !ok {
				return p.Encoder.Acc.Flush(ctx)
			}
			if err := p.Replay.Process(rec, emit); err != nil {
				if errors.Is(err, dataset.ErrBatchLimit) {
					p.Encoder.Logger.Info().Int("batches", p.Encoder.Acc.Batches()).Msg("reached max batches limit")
					return errStop
				}
				return err
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStop) {
		return err
	}
	return nil
}
