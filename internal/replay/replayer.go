// Package replay replays accepted games and emits one position per half-move.
package replay

import (
	"errors"
	"fmt"

	"github.com/freeeve/pgn/v3"

	"github.com/freeeve/pgntensor/internal/eco"
	"github.com/freeeve/pgntensor/internal/record"
)

// Record-scoped reasons a game yields no positions.
var (
	ErrDrawn          = errors.New("drawn game")
	ErrUnknownOutcome = errors.New("game has no decisive result")
	ErrMoveParse      = errors.New("move-text cannot be replayed")
)

// Game is the result of replaying one record.
type Game struct {
	// FENs holds the position after each half-move, in order.
	FENs    []string
	Outcome record.Outcome
	// Opening is the deepest ECO match seen during replay, if a database
	// was configured.
	Opening *eco.Opening
}

// Replayer replays move-text from the standard starting position.
type Replayer struct {
	openings *eco.Database
}

// NewReplayer returns a Replayer. openings may be nil.
func NewReplayer(openings *eco.Database) *Replayer {
	return &Replayer{openings: openings}
}

// Replay replays moveText for a game that ended with outcome. Drawn games
// return ErrDrawn without parsing. If any move fails to parse or apply the
// error wraps ErrMoveParse and no positions are returned.
func (r *Replayer) Replay(moveText string, outcome record.Outcome) (*Game, error) {
	switch outcome {
	case record.Draw:
		return nil, ErrDrawn
	case record.WhiteWin, record.BlackWin:
	default:
		return nil, ErrUnknownOutcome
	}

	moves, err := scanMoves(moveText)
	if err != nil {
		return nil, err
	}
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: no moves", ErrMoveParse)
	}

	g := &Game{FENs: make([]string, 0, len(moves)), Outcome: outcome}
	pos := pgn.NewStartingPosition()
	for ply, mv := range moves {
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrMoveParse, ply+1, err)
		}
		g.FENs = append(g.FENs, pos.ToFEN())

		if r.openings != nil {
			if o := r.openings.LookupGameState(pos); o != nil {
				g.Opening = o
			}
		}
	}
	return g, nil
}
