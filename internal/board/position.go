// Package board is a typed chess position model: a 64-cell grid of optional
// pieces plus side to move, castling rights and a legal en-passant target.
package board

// Kind is a piece kind, ordered pawn through king.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// NumKinds is the number of piece kinds.
const NumKinds = 6

// Side is a player color.
type Side uint8

const (
	White Side = iota
	Black
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return s ^ 1
}

// Square indexes the board from a1 (0) to h8 (63), rank-major.
type Square int8

// NoSquare marks an absent square.
const NoSquare Square = -1

// NewSquare returns the square on file (0=a) and rank (0=1).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns 0 for the a-file through 7 for the h-file.
func (sq Square) File() int { return int(sq) & 7 }

// Rank returns 0 for the first rank through 7 for the eighth.
func (sq Square) Rank() int { return int(sq) >> 3 }

// Valid reports whether sq is on the board.
func (sq Square) Valid() bool { return sq >= 0 && sq < 64 }

// String returns algebraic notation, or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses algebraic notation such as "e3".
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), true
}

// Cell is one board square: empty, or a piece of some kind and side.
type Cell struct {
	Occupied bool
	Kind     Kind
	Side     Side
}

// Empty is the empty cell.
var Empty = Cell{}

// PieceCell returns an occupied cell.
func PieceCell(k Kind, s Side) Cell {
	return Cell{Occupied: true, Kind: k, Side: s}
}

// Is reports whether c holds a piece of kind k and side s.
func (c Cell) Is(k Kind, s Side) bool {
	return c.Occupied && c.Kind == k && c.Side == s
}

// CastleRight identifies one of the four castling rights.
type CastleRight uint8

const (
	WhiteKingside CastleRight = iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

// NumCastleRights is the number of castling rights.
const NumCastleRights = 4

var castleCorners = [NumCastleRights]Square{
	WhiteKingside:  7,  // h1
	WhiteQueenside: 0,  // a1
	BlackKingside:  63, // h8
	BlackQueenside: 56, // a8
}

// Corner returns the rook corner square the right is anchored to.
func (r CastleRight) Corner() Square {
	return castleCorners[r]
}

// Position is a snapshot of the game state. EnPassant is NoSquare unless an
// en-passant capture is legal for the side to move.
type Position struct {
	Cells       [64]Cell
	WhiteToMove bool
	Castling    [NumCastleRights]bool
	EnPassant   Square
}

// At returns the cell at sq.
func (p *Position) At(sq Square) Cell {
	return p.Cells[sq]
}

// SideToMove returns the side whose turn it is.
func (p *Position) SideToMove() Side {
	if p.WhiteToMove {
		return White
	}
	return Black
}

// HasEnPassant reports whether an en-passant capture is currently legal.
func (p *Position) HasEnPassant() bool {
	return p.EnPassant.Valid()
}

// Count returns the number of occupied cells.
func (p *Position) Count() int {
	n := 0
	for _, c := range p.Cells {
		if c.Occupied {
			n++
		}
	}
	return n
}
