// Package encode turns positions into fixed-shape float32 plane stacks.
//
// Plane layout (row = rank index, rank 1 first; column = file, a first):
//
//	0-11  piece occupancy, kinds pawn..king, white then black per kind
//	12    side to move, all ones when white is to move
//	13    castling rights, marked on the rook corner of each right
//	14    en-passant target square, when a capture is legal
//
// Castling corners follow the piece-plane orientation, so a1 is [0][0] and
// h8 is [7][7]. This intentionally differs from castling planes laid out
// a8 first, where a8 would sit at [0][0].
package encode

import (
	"github.com/freeeve/pgntensor/internal/board"
	"github.com/freeeve/pgntensor/internal/record"
)

const (
	NumPlanes = 15
	Rows      = 8
	Cols      = 8

	// PlaneSize is the number of cells in one plane.
	PlaneSize = Rows * Cols
	// TensorSize is the number of float32 values in one tensor.
	TensorSize = NumPlanes * PlaneSize
)

// Fixed plane indices after the piece planes.
const (
	PlaneSideToMove = 12
	PlaneCastling   = 13
	PlaneEnPassant  = 14
)

// Plane is one 8x8 layer.
type Plane [Rows][Cols]float32

// Tensor is the encoded form of a position.
type Tensor [NumPlanes]Plane

// PiecePlane returns the plane index for a piece kind and side.
func PiecePlane(k board.Kind, s board.Side) int {
	return int(k)*2 + int(s)
}

func cellOf(sq board.Square) (row, col int) {
	return sq.Rank(), sq.File()
}

// Encode returns the tensor for p. It is a pure function of p.
func Encode(p *board.Position) Tensor {
	var t Tensor

	for i, c := range p.Cells {
		if !c.Occupied {
			continue
		}
		row, col := cellOf(board.Square(i))
		t[PiecePlane(c.Kind, c.Side)][row][col] = 1
	}

	if p.WhiteToMove {
		fill(&t[PlaneSideToMove], 1)
	}

	for r, ok := range p.Castling {
		if !ok {
			continue
		}
		row, col := cellOf(board.CastleRight(r).Corner())
		t[PlaneCastling][row][col] = 1
	}

	if p.HasEnPassant() {
		row, col := cellOf(p.EnPassant)
		t[PlaneEnPassant][row][col] = 1
	}
	return t
}

func fill(pl *Plane, v float32) {
	for r := range pl {
		for c := range pl[r] {
			pl[r][c] = v
		}
	}
}

// Label maps an outcome to its training target: +1 for a white win, -1 for
// a black win and 0 otherwise.
func Label(o record.Outcome) float32 {
	switch o {
	case record.WhiteWin:
		return 1
	case record.BlackWin:
		return -1
	default:
		return 0
	}
}

// Flatten appends the tensor's values to dst in plane, row, column order.
func (t *Tensor) Flatten(dst []float32) []float32 {
	for p := range t {
		for r := range t[p] {
			dst = append(dst, t[p][r][:]...)
		}
	}
	return dst
}

// Unflatten fills t from TensorSize values in plane, row, column order.
func (t *Tensor) Unflatten(src []float32) {
	i := 0
	for p := range t {
		for r := range t[p] {
			copy(t[p][r][:], src[i:i+Cols])
			i += Cols
		}
	}
}

// Sum returns the total of every cell in plane i.
func (t *Tensor) Sum(i int) float32 {
	var s float32
	for r := range t[i] {
		for _, v := range t[i][r] {
			s += v
		}
	}
	return s
}
