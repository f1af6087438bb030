package board

import (
	"errors"
	"fmt"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every FEN parse failure.
var ErrInvalidFEN = errors.New("invalid FEN")

var pieceLetters = [NumKinds]byte{'p', 'n', 'b', 'r', 'q', 'k'}

func kindFromLetter(c byte) (Kind, bool) {
	lc := c | 0x20
	for k, l := range pieceLetters {
		if l == lc {
			return Kind(k), true
		}
	}
	return 0, false
}

// Letter returns the FEN letter for c, uppercase for white. Empty cells
// return 0.
func (c Cell) Letter() byte {
	if !c.Occupied {
		return 0
	}
	l := pieceLetters[c.Kind]
	if c.Side == White {
		l -= 'a' - 'A'
	}
	return l
}

var castleLetters = [NumCastleRights]byte{
	WhiteKingside:  'K',
	WhiteQueenside: 'Q',
	BlackKingside:  'k',
	BlackQueenside: 'q',
}

// ParseFEN parses a FEN string. Move clocks are optional. The en-passant
// field is kept only when an en-passant capture is legal in the position.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: want at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}

	p := &Position{EnPassant: NoSquare}
	if err := parsePlacement(p, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.WhiteToMove = true
	case "b":
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			right, ok := castleRightFromLetter(fields[2][i])
			if !ok {
				return nil, fmt.Errorf("%w: castling %q", ErrInvalidFEN, fields[2])
			}
			p.Castling[right] = true
		}
	}

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return nil, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		if legalEnPassant(p, sq, fields) {
			p.EnPassant = sq
		}
	}
	return p, nil
}

func parsePlacement(p *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	// FEN lists rank 8 first.
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			kind, ok := kindFromLetter(c)
			if !ok {
				return fmt.Errorf("%w: piece %q", ErrInvalidFEN, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			side := Black
			if c >= 'A' && c <= 'Z' {
				side = White
			}
			p.Cells[NewSquare(file, rank)] = PieceCell(kind, side)
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

func castleRightFromLetter(c byte) (CastleRight, bool) {
	for r, l := range castleLetters {
		if l == c {
			return CastleRight(r), true
		}
	}
	return 0, false
}

// FEN renders p with zero move clocks.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		blanks := 0
		for file := 0; file < 8; file++ {
			c := p.Cells[NewSquare(file, rank)]
			if !c.Occupied {
				blanks++
				continue
			}
			if blanks != 0 {
				sb.WriteByte(byte('0' + blanks))
				blanks = 0
			}
			sb.WriteByte(c.Letter())
		}
		if blanks != 0 {
			sb.WriteByte(byte('0' + blanks))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.WhiteToMove {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	hasRight := false
	for r, ok := range p.Castling {
		if ok {
			sb.WriteByte(castleLetters[r])
			hasRight = true
		}
	}
	if !hasRight {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteString(" 0 1")
	return sb.String()
}
