package encode

import (
	"testing"

	"github.com/freeeve/pgntensor/internal/board"
	"github.com/freeeve/pgntensor/internal/record"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestEncodeStartPosition(t *testing.T) {
	tensor := Encode(mustParse(t, board.StartFEN))

	var pieces float32
	for i := 0; i < 12; i++ {
		pieces += tensor.Sum(i)
	}
	if pieces != 32 {
		t.Errorf("piece planes sum = %v, want 32", pieces)
	}

	counts := []struct {
		kind board.Kind
		want float32
	}{
		{board.Pawn, 8},
		{board.Knight, 2},
		{board.Bishop, 2},
		{board.Rook, 2},
		{board.Queen, 1},
		{board.King, 1},
	}
	for _, c := range counts {
		for _, side := range []board.Side{board.White, board.Black} {
			if got := tensor.Sum(PiecePlane(c.kind, side)); got != c.want {
				t.Errorf("plane %d (kind %d side %d) sum = %v, want %v",
					PiecePlane(c.kind, side), c.kind, side, got, c.want)
			}
		}
	}

	// white pawns on rank 2, black king on e8
	for col := 0; col < 8; col++ {
		if tensor[PiecePlane(board.Pawn, board.White)][1][col] != 1 {
			t.Errorf("white pawn missing at row 1 col %d", col)
		}
	}
	if tensor[PiecePlane(board.King, board.Black)][7][4] != 1 {
		t.Error("black king missing at row 7 col 4")
	}

	if got := tensor.Sum(PlaneSideToMove); got != 64 {
		t.Errorf("side-to-move plane sum = %v, want 64", got)
	}

	nonzero := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			v := tensor[PlaneCastling][r][c]
			if v == 0 {
				continue
			}
			nonzero++
			if v != 1 {
				t.Errorf("castling cell [%d][%d] = %v, want 1", r, c, v)
			}
			if (r != 0 && r != 7) || (c != 0 && c != 7) {
				t.Errorf("castling cell [%d][%d] is not a corner", r, c)
			}
		}
	}
	if nonzero != 4 {
		t.Errorf("castling plane has %d nonzero cells, want 4", nonzero)
	}

	if got := tensor.Sum(PlaneEnPassant); got != 0 {
		t.Errorf("en-passant plane sum = %v, want 0", got)
	}
}

func TestEncodePlaneOrder(t *testing.T) {
	want := []struct {
		kind  board.Kind
		side  board.Side
		plane int
	}{
		{board.Pawn, board.White, 0},
		{board.Pawn, board.Black, 1},
		{board.Knight, board.White, 2},
		{board.Bishop, board.Black, 5},
		{board.Rook, board.White, 6},
		{board.Queen, board.Black, 9},
		{board.King, board.White, 10},
		{board.King, board.Black, 11},
	}
	for _, w := range want {
		if got := PiecePlane(w.kind, w.side); got != w.plane {
			t.Errorf("PiecePlane(%d, %d) = %d, want %d", w.kind, w.side, got, w.plane)
		}
	}
}

func TestEncodeSideToMoveAndCastling(t *testing.T) {
	tensor := Encode(mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R b Kq - 0 1"))

	if got := tensor.Sum(PlaneSideToMove); got != 0 {
		t.Errorf("side-to-move plane sum = %v, want 0 for black", got)
	}

	corners := []struct {
		row, col int
		want     float32
	}{
		{0, 7, 1}, // h1, white kingside
		{0, 0, 0}, // a1, white queenside
		{7, 7, 0}, // h8, black kingside
		{7, 0, 1}, // a8, black queenside
	}
	for _, c := range corners {
		if got := tensor[PlaneCastling][c.row][c.col]; got != c.want {
			t.Errorf("castling [%d][%d] = %v, want %v", c.row, c.col, got, c.want)
		}
	}
	if got := tensor.Sum(PlaneCastling); got != 2 {
		t.Errorf("castling plane sum = %v, want 2", got)
	}
}

func TestEncodeEnPassant(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		row, col int
		want     float32
	}{
		{"legal", "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", 5, 5, 1},
		{"no capturer", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", 2, 4, 0},
		{"pinned capturer", "8/8/8/KPp4r/8/8/8/7k w - c6 0 1", 5, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor := Encode(mustParse(t, tt.fen))
			if got := tensor[PlaneEnPassant][tt.row][tt.col]; got != tt.want {
				t.Errorf("en-passant [%d][%d] = %v, want %v", tt.row, tt.col, got, tt.want)
			}
			if got := tensor.Sum(PlaneEnPassant); got != tt.want {
				t.Errorf("en-passant plane sum = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	fen := "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"
	a := Encode(mustParse(t, fen))
	b := Encode(mustParse(t, fen))
	if a != b {
		t.Error("encoding the same position twice gave different tensors")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		outcome record.Outcome
		want    float32
	}{
		{record.WhiteWin, 1},
		{record.BlackWin, -1},
		{record.Draw, 0},
		{record.Unknown, 0},
	}
	for _, tt := range tests {
		if got := Label(tt.outcome); got != tt.want {
			t.Errorf("Label(%v) = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}

func TestFlattenLayout(t *testing.T) {
	tensor := Encode(mustParse(t, board.StartFEN))
	flat := tensor.Flatten(nil)
	if len(flat) != TensorSize {
		t.Fatalf("len = %d, want %d", len(flat), TensorSize)
	}
	// plane 0 row 1 col 0 is the a2 white pawn
	if flat[0*PlaneSize+1*Cols+0] != 1 {
		t.Error("flat layout does not put a2 pawn at plane 0 row 1 col 0")
	}

	var back Tensor
	back.Unflatten(flat)
	if back != tensor {
		t.Error("Unflatten(Flatten(t)) != t")
	}
}
