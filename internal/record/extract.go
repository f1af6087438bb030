package record

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/stats"
)

// ExtractConfig configures Extract.
type ExtractConfig struct {
	Policy         Policy
	MaxHeaderLines int              // default DefaultMaxHeaderLines
	MaxRecords     int              // stop after this many accepted records (0 = unlimited)
	Stats          *stats.Collector // optional
	Logger         zerolog.Logger
}

// lineCounter is implemented by sources that track their cursor.
type lineCounter interface {
	Lines() int64
}

// Extract reads every record from src and passes accepted ones to emit with
// sequential ids starting at 1. It stops at a clean end of stream, at
// MaxRecords, or on the first fatal error.
func Extract(ctx context.Context, src LineSource, cfg ExtractConfig, emit func(GameRecord) error) error {
	r := NewReader(src, cfg.Policy)
	r.SetMaxHeaderLines(cfg.MaxHeaderLines)
	lc, _ := src.(lineCounter)
	progress := stats.NewProgress(cfg.Logger, cfg.Stats, 0)

	accepted := 0
recordLoop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h, moveText, ok, err := r.Next()
		if lc != nil {
			cfg.Stats.SetLinesConsumed(lc.Lines())
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break recordLoop
			}
			if lc != nil {
				return fmt.Errorf("read record at line %d: %w", lc.Lines(), err)
			}
			return fmt.Errorf("read record: %w", err)
		}
		cfg.Stats.RecordScanned(ok)
		if !ok {
			progress.Tick("extract")
			continue
		}

		accepted++
		if err := emit(GameRecord{ID: accepted, MoveText: moveText, Outcome: h.Outcome}); err != nil {
			return err
		}
		if cfg.MaxRecords > 0 && accepted >= cfg.MaxRecords {
			cfg.Logger.Info().Int("records", accepted).Msg("reached max records limit")
			break recordLoop
		}
		progress.Tick("extract")
	}

	progress.Done("extract")
	return nil
}
