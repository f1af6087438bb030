package record

import (
	"errors"
	"io"
)

// Reader walks an archive one record at a time.
//
// Every record occupies its header lines, one blank line, one move-text line
// and one trailing blank line. Rejected records are consumed in full before
// Next returns. For accepted records Next returns right after the move-text
// line and the trailing blank line is consumed at the start of the following
// call, so both paths advance the stream by the same number of lines per
// record.
type Reader struct {
	src      LineSource
	policy   Policy
	maxLines int
	pending  bool
}

// NewReader returns a Reader over src using policy.
func NewReader(src LineSource, policy Policy) *Reader {
	return &Reader{src: src, policy: policy, maxLines: DefaultMaxHeaderLines}
}

// SetMaxHeaderLines overrides the header scan bound.
func (r *Reader) SetMaxHeaderLines(n int) {
	if n > 0 {
		r.maxLines = n
	}
}

// Next reads one record. ok reports whether it passed the policy, in which
// case moveText holds its move-text line. The header is returned either way.
//
// Next returns io.EOF when the stream ends cleanly on a record boundary,
// including when only blank lines follow the last record, and
// ErrStreamExhausted when it ends inside a record.
func (r *Reader) Next() (h Header, moveText string, ok bool, err error) {
	if r.pending {
		r.pending = false
		if _, err := r.src.ReadLine(); err != nil {
			return h, "", false, err
		}
	}

	h, _, tags, err := scanHeader(r.src, r.maxLines)
	if err != nil {
		return h, "", false, err
	}

	moveText, err = r.src.ReadLine()
	if tags == 0 {
		// blank lines with nothing after them end the archive
		for err == nil && moveText == "" {
			moveText, err = r.src.ReadLine()
		}
		if errors.Is(err, io.EOF) {
			return h, "", false, io.EOF
		}
	}
	if err != nil {
		return h, "", false, exhausted(err)
	}

	if r.policy.Accept(h) {
		r.pending = true
		return h, moveText, true, nil
	}

	// Trailing separator. A missing one at end of input still leaves the
	// stream on a record boundary.
	if _, err := r.src.ReadLine(); err != nil && !errors.Is(err, io.EOF) {
		return h, "", false, err
	}
	return h, "", false, nil
}

func exhausted(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrStreamExhausted
	}
	return err
}
