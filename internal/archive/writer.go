package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// LineWriter is a buffered writer for intermediate files.
type LineWriter struct {
	w     *bufio.Writer
	enc   *zstd.Encoder
	f     *os.File
	lines int64
}

// NewLineWriter wraps w without compression. Close flushes but does not
// close w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriterSize(w, 1<<20)}
}

// Create creates path for writing. Paths ending in .zst are compressed;
// "-" writes stdout.
func Create(path string) (*LineWriter, error) {
	if path == "-" {
		return NewLineWriter(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsZstd(path) {
		lw := NewLineWriter(f)
		lw.f = f
		return lw, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &LineWriter{w: bufio.NewWriterSize(enc, 1<<20), enc: enc, f: f}, nil
}

// WriteLine writes s followed by a newline.
func (lw *LineWriter) WriteLine(s string) error {
	if _, err := lw.w.WriteString(s); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	lw.lines++
	return nil
}

// Lines returns the number of lines written.
func (lw *LineWriter) Lines() int64 {
	return lw.lines
}

// Close flushes buffered data and closes the encoder and file.
func (lw *LineWriter) Close() error {
	err := lw.w.Flush()
	if lw.enc != nil {
		if cerr := lw.enc.Close(); err == nil {
			err = cerr
		}
	}
	if lw.f != nil {
		if cerr := lw.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
