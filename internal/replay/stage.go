package replay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/stats"
)

// EmitFunc receives one position of a replayed game.
type EmitFunc func(fen string, outcome record.Outcome) error

// Stage replays records and forwards their positions in order.
type Stage struct {
	Replayer *Replayer
	Stats    *stats.Collector // optional
	Logger   zerolog.Logger
	// Openings, when non-nil, counts replayed games per ECO code.
	Openings map[string]int
}

// Process replays rec and emits its positions. Drawn, undecided and
// unreplayable games are counted and skipped; only emit errors are
// returned.
func (s *Stage) Process(rec record.GameRecord, emit EmitFunc) error {
	g, err := s.Replayer.Replay(rec.MoveText, rec.Outcome)
	switch {
	case err == nil:
	case errors.Is(err, ErrDrawn):
		s.Stats.GameDrawn()
		return nil
	case errors.Is(err, ErrUnknownOutcome):
		s.Stats.GameUnknown()
		return nil
	case errors.Is(err, ErrMoveParse):
		s.Stats.MoveError()
		s.Logger.Debug().Err(err).Int("id", rec.ID).Msg("skipping record")
		return nil
	default:
		return err
	}

	for _, fen := range g.FENs {
		if err := emit(fen, g.Outcome); err != nil {
			return err
		}
	}
	s.Stats.GameReplayed(len(g.FENs))
	if s.Openings != nil && g.Opening != nil {
		s.Openings[g.Opening.ECO]++
	}
	return nil
}

// Run reads `id_<n> <move-text>` lines from src until end of stream. The
// outcome of each record is taken from its move-text result token.
func (s *Stage) Run(ctx context.Context, src record.LineSource, emit EmitFunc) error {
	progress := stats.NewProgress(s.Logger, s.Stats, 0)
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
			return fmt.Errorf("read record line %d: %w", lineNo+1, err)
		}
		lineNo++
		if line == "" {
			continue
		}

		id, moveText, err := record.ParseLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		rec := record.GameRecord{ID: id, MoveText: moveText, Outcome: OutcomeFromMoveText(moveText)}
		if err := s.Process(rec, emit); err != nil {
			return err
		}
		progress.Tick("replay")
	}
	progress.Done("replay")
	return nil
}
