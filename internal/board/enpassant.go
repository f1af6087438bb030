package board

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// legalEnPassant reports whether the side to move in p can legally capture
// en passant onto target. fields are the FEN fields p was parsed from.
//
// The cheap geometric checks run on p; pins and checks are settled by
// generating legal moves with dragontoothmg.
func legalEnPassant(p *Position, target Square, fields []string) bool {
	us := p.SideToMove()
	victim := target - 8
	wantRank := 5
	if us == Black {
		victim = target + 8
		wantRank = 2
	}
	if target.Rank() != wantRank || p.Cells[target].Occupied {
		return false
	}
	if !p.Cells[victim].Is(Pawn, us.Opponent()) {
		return false
	}

	var capturers []Square
	for _, df := range [2]int{-1, 1} {
		f := victim.File() + df
		if f < 0 || f > 7 {
			continue
		}
		sq := NewSquare(f, victim.Rank())
		if p.Cells[sq].Is(Pawn, us) {
			capturers = append(capturers, sq)
		}
	}
	if len(capturers) == 0 {
		return false
	}

	for _, m := range legalMoves(fullFEN(fields)) {
		if Square(m.To()) != target {
			continue
		}
		from := Square(m.From())
		for _, c := range capturers {
			if from == c {
				return true
			}
		}
	}
	return false
}

// legalMoves returns no moves for positions dragontoothmg cannot set up,
// such as boards without a king.
func legalMoves(fen string) (moves []dragontoothmg.Move) {
	defer func() {
		if recover() != nil {
			moves = nil
		}
	}()
	b := dragontoothmg.ParseFen(fen)
	return b.GenerateLegalMoves()
}

// fullFEN pads fields with default move clocks.
func fullFEN(fields []string) string {
	f := make([]string, 6)
	copy(f, fields)
	if f[4] == "" {
		f[4] = "0"
	}
	if f[5] == "" {
		f[5] = "1"
	}
	return strings.Join(f, " ")
}
