package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/board"
	"github.com/freeeve/pgntensor/internal/encode"
	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/replay"
	"github.com/freeeve/pgntensor/internal/stats"
)

// Encoder turns positions into samples and feeds them to an Accumulator.
type Encoder struct {
	Acc    *Accumulator
	Stats  *stats.Collector // optional
	Logger zerolog.Logger
}

// AddPosition encodes fen labelled with outcome. It returns ErrBatchLimit
// once the accumulator is full.
func (e *Encoder) AddPosition(ctx context.Context, fen string, outcome record.Outcome) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	t := encode.Encode(pos)
	return e.Acc.Add(ctx, &t, encode.Label(outcome))
}

// Run reads `<FEN>___<result>` lines from src until end of stream or the
// batch limit, then flushes the accumulator. A malformed line is fatal.
func (e *Encoder) Run(ctx context.Context, src record.LineSource) error {
	progress := stats.NewProgress(e.Logger, e.Stats, 0)
	lineNo := 0
lineLoop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break lineLoop
			}
			return fmt.Errorf("read position line %d: %w", lineNo+1, err)
		}
		lineNo++
		if line == "" {
			continue
		}

		fen, outcome, err := replay.ParsePositionLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := e.AddPosition(ctx, fen, outcome); err != nil {
			if errors.Is(err, ErrBatchLimit) {
				e.Logger.Info().Int("batches", e.Acc.Batches()).Msg("reached max batches limit")
				break lineLoop
			}
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		progress.Tick("encode")
	}

	if err := e.Acc.Flush(ctx); err != nil {
		return err
	}
	progress.Done("encode")
	return nil
}
