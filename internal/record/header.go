package record

import (
	"strconv"
	"strings"
)

// Outcome is the final result of a game.
type Outcome uint8

const (
	Unknown Outcome = iota
	WhiteWin
	BlackWin
	Draw
)

// Result tokens as they appear in PGN.
const (
	ResultWhiteWin = "1-0"
	ResultBlackWin = "0-1"
	ResultDraw     = "1/2-1/2"
)

// String returns the PGN result token, or "*" for Unknown.
func (o Outcome) String() string {
	switch o {
	case WhiteWin:
		return ResultWhiteWin
	case BlackWin:
		return ResultBlackWin
	case Draw:
		return ResultDraw
	default:
		return "*"
	}
}

// ParseOutcome maps a bare PGN result token to an Outcome.
func ParseOutcome(s string) Outcome {
	switch s {
	case ResultWhiteWin:
		return WhiteWin
	case ResultBlackWin:
		return BlackWin
	case ResultDraw:
		return Draw
	default:
		return Unknown
	}
}

// Header holds the tag fields the filter cares about. Zero values are the
// defaults for absent or malformed tags.
type Header struct {
	WhiteElo          int
	BlackElo          int
	BaseSeconds       int
	NormalTermination bool
	Outcome           Outcome
}

// GameRecord is an accepted game ready for replay.
type GameRecord struct {
	ID       int
	MoveText string
	Outcome  Outcome
}

const normalTermination = `"Normal"`

// tagHandlers maps recognized tag keys to field setters. Values arrive
// still quoted.
var tagHandlers = map[string]func(h *Header, value string){
	"WhiteElo": func(h *Header, v string) {
		h.WhiteElo = parseDigits(unquote(v))
	},
	"BlackElo": func(h *Header, v string) {
		h.BlackElo = parseDigits(unquote(v))
	},
	"TimeControl": func(h *Header, v string) {
		base, _, _ := strings.Cut(unquote(v), "+")
		h.BaseSeconds = parseDigits(base)
	},
	"Termination": func(h *Header, v string) {
		h.NormalTermination = v == normalTermination
	},
	"Result": func(h *Header, v string) {
		h.Outcome = ParseOutcome(unquote(v))
	},
}

// unquote drops the first and last byte of a quoted tag value.
func unquote(v string) string {
	if len(v) < 2 {
		return ""
	}
	return v[1 : len(v)-1]
}

// parseDigits returns the integer value of s when s is a non-empty run of
// ASCII digits, and 0 otherwise.
func parseDigits(s string) int {
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
	}
	// digit runs that overflow int count as malformed and read as 0
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
