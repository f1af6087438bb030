package replay

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/freeeve/pgntensor/internal/record"
)

// some exporters write castling with zeros, which the pgn scanner skips
var zeroCastleRe = regexp.MustCompile(`(^|[\s.(])0-0(-0)?`)

// normalizeMoveText rewrites zero castling to letter O and drops
// rest-of-line comments outside braces.
func normalizeMoveText(moveText string) string {
	moveText = zeroCastleRe.ReplaceAllStringFunc(moveText, func(m string) string {
		return strings.ReplaceAll(m, "0", "O")
	})

	var b strings.Builder
	inBrace := false
	for i := 0; i < len(moveText); i++ {
		c := moveText[i]
		switch {
		case c == '{':
			inBrace = true
		case c == '}':
			inBrace = false
		case c == ';' && !inBrace:
			nl := strings.IndexByte(moveText[i:], '\n')
			if nl < 0 {
				return b.String()
			}
			i += nl
			c = '\n'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// scanMoves parses the main line of moveText from the starting position.
// Comments, variations, NAGs and move numbers are skipped.
func scanMoves(moveText string) ([]pgn.Mv, error) {
	g, err := pgn.NewPGNScanner(strings.NewReader(normalizeMoveText(moveText))).Scan()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoveParse, err)
	}
	return append([]pgn.Mv(nil), g.Moves...), nil
}

// OutcomeFromMoveText returns the outcome named by the move-text's trailing
// result token, or Unknown.
func OutcomeFromMoveText(moveText string) record.Outcome {
	fields := strings.Fields(moveText)
	if len(fields) == 0 {
		return record.Unknown
	}
	return record.ParseOutcome(fields[len(fields)-1])
}
