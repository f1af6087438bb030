package replay

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgntensor/internal/record"
)

// PositionSeparator joins a FEN and its result token.
const PositionSeparator = "___"

// FormatPositionLine renders `<FEN>___<result>`.
func FormatPositionLine(fen string, outcome record.Outcome) string {
	return fen + PositionSeparator + outcome.String()
}

// ParsePositionLine splits a `<FEN>___<result>` line. Only decisive results
// are valid.
func ParsePositionLine(line string) (fen string, outcome record.Outcome, err error) {
	fen, result, found := strings.Cut(line, PositionSeparator)
	if !found {
		return "", record.Unknown, fmt.Errorf("position line missing %q separator", PositionSeparator)
	}
	outcome = record.ParseOutcome(result)
	if outcome != record.WhiteWin && outcome != record.BlackWin {
		return "", record.Unknown, fmt.Errorf("position line has non-decisive result %q", result)
	}
	return fen, outcome, nil
}
