// Package archive opens game archives and intermediate files as line streams,
// transparently handling zstd compression.
package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single line. Lichess move-text with clock comments
// can run to tens of kilobytes.
const maxLineSize = 16 * 1024 * 1024

// LineReader reads trimmed lines and counts how many have been consumed.
type LineReader struct {
	scanner *bufio.Scanner
	closers []io.Closer
	lines   int64
}

// NewLineReader wraps r. The caller keeps ownership of r.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return &LineReader{scanner: s}
}

// Open opens path for line reading. Paths ending in .zst are decompressed;
// "-" reads stdin.
func Open(path string) (*LineReader, error) {
	if path == "-" {
		return NewLineReader(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsZstd(path) {
		lr := NewLineReader(f)
		lr.closers = append(lr.closers, f)
		return lr, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	lr := NewLineReader(dec)
	lr.closers = append(lr.closers, decoderCloser{dec}, f)
	return lr, nil
}

// ReadLine returns the next line with surrounding whitespace removed.
// It returns io.EOF once the stream is exhausted.
func (lr *LineReader) ReadLine() (string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	lr.lines++
	return strings.TrimSpace(lr.scanner.Text()), nil
}

// Lines returns the number of lines consumed so far.
func (lr *LineReader) Lines() int64 {
	return lr.lines
}

// Close releases the decoder and file, if any.
func (lr *LineReader) Close() error {
	var first error
	for _, c := range lr.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	lr.closers = nil
	return first
}

type decoderCloser struct{ d *zstd.Decoder }

func (c decoderCloser) Close() error {
	c.d.Close()
	return nil
}

// IsZstd reports whether path names a zstd-compressed file.
func IsZstd(path string) bool {
	return filepath.Ext(path) == ".zst"
}

// IsPGNFile reports whether name looks like a PGN archive (.pgn or .pgn.zst).
func IsPGNFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == ".pgn" {
		return true
	}
	if ext == ".zst" {
		base := name[:len(name)-4]
		return filepath.Ext(base) == ".pgn"
	}
	return false
}
