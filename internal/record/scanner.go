package record

import (
	"errors"
	"io"
	"strings"
)

// DefaultMaxHeaderLines bounds a header scan so input that never yields a
// blank separator still terminates.
const DefaultMaxHeaderLines = 50

// ErrStreamExhausted is returned when the input ends inside a record.
var ErrStreamExhausted = errors.New("stream exhausted mid-record")

// LineSource is a line-oriented text cursor.
type LineSource interface {
	ReadLine() (string, error)
}

// ScanHeader consumes tag lines until a blank line or maxLines lines,
// whichever comes first, and returns the extracted header and the number
// of lines consumed. The terminating blank line counts as consumed.
//
// It returns io.EOF if the stream is already at its end, and
// ErrStreamExhausted if it ends after at least one line was read.
func ScanHeader(src LineSource, maxLines int) (Header, int, error) {
	h, n, _, err := scanHeader(src, maxLines)
	return h, n, err
}

// scanHeader is ScanHeader that also reports how many non-blank lines the
// header held.
func scanHeader(src LineSource, maxLines int) (h Header, n, tags int, err error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxHeaderLines
	}
	for n < maxLines {
		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if n == 0 {
					return h, 0, tags, io.EOF
				}
				return h, n, tags, ErrStreamExhausted
			}
			return h, n, tags, err
		}
		n++
		if line == "" {
			break
		}
		tags++
		applyTag(&h, line)
	}
	return h, n, tags, nil
}

// applyTag parses one `[Key "Value"]` line into h. Unknown keys and
// malformed lines leave h unchanged.
func applyTag(h *Header, line string) {
	if len(line) < 2 {
		return
	}
	key, value, _ := strings.Cut(line[1:len(line)-1], " ")
	if set, ok := tagHandlers[key]; ok {
		set(h, value)
	}
}
