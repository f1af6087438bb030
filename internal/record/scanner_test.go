package record

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/freeeve/pgntensor/internal/archive"
)

func TestScanHeaderFields(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  Header
	}{
		{
			name: "accepted game",
			lines: []string{
				`[Event "Rated Blitz game"]`,
				`[Site "https://lichess.org/abcd1234"]`,
				`[Result "1-0"]`,
				`[WhiteElo "2100"]`,
				`[BlackElo "2200"]`,
				`[TimeControl "300+0"]`,
				`[Termination "Normal"]`,
			},
			want: Header{WhiteElo: 2100, BlackElo: 2200, BaseSeconds: 300, NormalTermination: true, Outcome: WhiteWin},
		},
		{
			name:  "non-numeric rating defaults",
			lines: []string{`[WhiteElo "abc"]`, `[BlackElo "?"]`},
			want:  Header{},
		},
		{
			name:  "overflowing rating defaults",
			lines: []string{`[WhiteElo "99999999999999999999999"]`, `[BlackElo "2200"]`},
			want:  Header{BlackElo: 2200},
		},
		{
			name:  "time control without increment",
			lines: []string{`[TimeControl "600"]`},
			want:  Header{BaseSeconds: 600},
		},
		{
			name:  "correspondence time control",
			lines: []string{`[TimeControl "-"]`},
			want:  Header{},
		},
		{
			name:  "time forfeit is not normal",
			lines: []string{`[Termination "Time forfeit"]`},
			want:  Header{},
		},
		{
			name:  "draw",
			lines: []string{`[Result "1/2-1/2"]`},
			want:  Header{Outcome: Draw},
		},
		{
			name:  "black win",
			lines: []string{`[Result "0-1"]`},
			want:  Header{Outcome: BlackWin},
		},
		{
			name:  "aborted result stays unknown",
			lines: []string{`[Result "*"]`},
			want:  Header{},
		},
		{
			name:  "unknown keys and malformed lines ignored",
			lines: []string{`[Opening "Sicilian Defense"]`, `x`, `[]`, `[WhiteElo]`},
			want:  Header{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Join(tt.lines, "\n") + "\n\n"
			lr := archive.NewLineReader(strings.NewReader(input))
			got, n, err := ScanHeader(lr, DefaultMaxHeaderLines)
			if err != nil {
				t.Fatalf("ScanHeader: %v", err)
			}
			if got != tt.want {
				t.Errorf("header = %+v, want %+v", got, tt.want)
			}
			if want := len(tt.lines) + 1; n != want {
				t.Errorf("consumed %d lines, want %d", n, want)
			}
		})
	}
}

func TestScanHeaderBound(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 80; i++ {
		sb.WriteString(`[WhiteElo "2500"]` + "\n")
	}
	lr := archive.NewLineReader(strings.NewReader(sb.String()))

	h, n, err := ScanHeader(lr, DefaultMaxHeaderLines)
	if err != nil {
		t.Fatalf("ScanHeader: %v", err)
	}
	if n != DefaultMaxHeaderLines {
		t.Errorf("consumed %d lines, want %d", n, DefaultMaxHeaderLines)
	}
	if lr.Lines() != DefaultMaxHeaderLines {
		t.Errorf("cursor at %d, want %d", lr.Lines(), DefaultMaxHeaderLines)
	}
	if h.WhiteElo != 2500 {
		t.Errorf("WhiteElo = %d, want 2500", h.WhiteElo)
	}
}

func TestScanHeaderEndOfStream(t *testing.T) {
	lr := archive.NewLineReader(strings.NewReader(""))
	if _, _, err := ScanHeader(lr, 0); !errors.Is(err, io.EOF) {
		t.Errorf("empty stream: err = %v, want io.EOF", err)
	}

	lr = archive.NewLineReader(strings.NewReader(`[Result "1-0"]` + "\n"))
	if _, _, err := ScanHeader(lr, 0); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("truncated header: err = %v, want ErrStreamExhausted", err)
	}
}

func TestPolicyAccept(t *testing.T) {
	base := Header{WhiteElo: 2100, BlackElo: 2200, BaseSeconds: 300, NormalTermination: true, Outcome: WhiteWin}
	if !DefaultPolicy.Accept(base) {
		t.Fatalf("base header rejected: %+v", base)
	}

	tests := []struct {
		name   string
		mutate func(h *Header)
	}{
		{"white rating at threshold", func(h *Header) { h.WhiteElo = 2000 }},
		{"black rating below", func(h *Header) { h.BlackElo = 1500 }},
		{"unknown outcome", func(h *Header) { h.Outcome = Unknown }},
		{"short time control", func(h *Header) { h.BaseSeconds = 179 }},
		{"abnormal termination", func(h *Header) { h.NormalTermination = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base
			tt.mutate(&h)
			if DefaultPolicy.Accept(h) {
				t.Errorf("Accept(%+v) = true, want false", h)
			}
		})
	}

	edge := base
	edge.BaseSeconds = 180
	edge.Outcome = Draw
	if !DefaultPolicy.Accept(edge) {
		t.Errorf("Accept(%+v) = false, want true", edge)
	}
}
