// Package eco provides ECO (Encyclopedia of Chess Openings) lookup used to
// report the opening mix of a converted dataset.
package eco

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// Opening represents an ECO opening classification.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// Database holds ECO opening data indexed by position.
type Database struct {
	byPosition map[pgn.PackedPosition]Opening
	count      int
	skipped    int
}

// NewDatabase creates an empty ECO database.
func NewDatabase() *Database {
	return &Database{
		byPosition: make(map[pgn.PackedPosition]Opening),
	}
}

// moveNumberRegex matches move numbers like "1." or "12..."
var moveNumberRegex = regexp.MustCompile(`\d+\.+\s*`)

// LoadDir loads all .tsv files from a directory.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single TSV file.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return db.Load(f)
}

// Load reads `eco<TAB>name<TAB>pgn` rows. An optional header row and rows
// whose moves do not replay are skipped.
func (db *Database) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.HasPrefix(line, "eco\t") {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		pos := pgn.NewStartingPosition()
		if err := applyMoves(pos, parts[2]); err != nil {
			db.skipped++
			continue
		}

		db.byPosition[pos.Pack()] = Opening{ECO: parts[0], Name: parts[1]}
		db.count++
	}

	return scanner.Err()
}

// applyMoves parses and applies PGN moves like "1. e4 e5 2. Nf3 Nc6"
func applyMoves(pos *pgn.GameState, pgnMoves string) error {
	cleaned := moveNumberRegex.ReplaceAllString(pgnMoves, "")
	for _, san := range strings.Fields(cleaned) {
		if san[0] == '$' || san[0] == '{' {
			continue
		}
		san = strings.TrimRight(san, "+#")

		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return fmt.Errorf("parse %q: %w", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return fmt.Errorf("apply %q: %w", san, err)
		}
	}
	return nil
}

// Lookup returns the ECO opening for a position, or nil if not found.
func (db *Database) Lookup(pos pgn.PackedPosition) *Opening {
	if o, ok := db.byPosition[pos]; ok {
		return &o
	}
	return nil
}

// LookupGameState returns the ECO opening for a GameState.
func (db *Database) LookupGameState(gs *pgn.GameState) *Opening {
	return db.Lookup(gs.Pack())
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return db.count
}

// Skipped returns the number of rows whose moves failed to replay.
func (db *Database) Skipped() int {
	return db.skipped
}
