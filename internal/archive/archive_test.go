package archive

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestLineReaderTrimsAndCounts(t *testing.T) {
	lr := NewLineReader(strings.NewReader("[Event \"x\"]\r\n\n  1. e4 e5 1-0  \n"))

	want := []string{`[Event "x"]`, "", "1. e4 e5 1-0"}
	for i, w := range want {
		got, err := lr.ReadLine()
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if got != w {
			t.Errorf("line %d = %q, want %q", i, got, w)
		}
	}
	if _, err := lr.ReadLine(); err != io.EOF {
		t.Fatalf("ReadLine at end = %v, want io.EOF", err)
	}
	if lr.Lines() != 3 {
		t.Errorf("Lines() = %d, want 3", lr.Lines())
	}
}

func TestZstdRoundTrip(t *testing.T) {
	for _, name := range []string{"records.txt", "records.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			lw, err := Create(path)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			lines := []string{"id_1 1. e4 e5 1-0", "id_2 1. d4 d5 0-1"}
			for _, l := range lines {
				if err := lw.WriteLine(l); err != nil {
					t.Fatalf("WriteLine: %v", err)
				}
			}
			if err := lw.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if lw.Lines() != 2 {
				t.Errorf("written Lines() = %d, want 2", lw.Lines())
			}

			lr, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer lr.Close()
			for i, want := range lines {
				got, err := lr.ReadLine()
				if err != nil {
					t.Fatalf("ReadLine %d: %v", i, err)
				}
				if got != want {
					t.Errorf("line %d = %q, want %q", i, got, want)
				}
			}
			if _, err := lr.ReadLine(); err != io.EOF {
				t.Errorf("expected io.EOF, got %v", err)
			}
		})
	}
}

func TestIsPGNFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"lichess_db_standard_rated_2024-01.pgn.zst", true},
		{"games.pgn", true},
		{"games.txt.zst", false},
		{"games.txt", false},
	}
	for _, tt := range tests {
		if got := IsPGNFile(tt.name); got != tt.want {
			t.Errorf("IsPGNFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
