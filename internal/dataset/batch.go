// Package dataset groups encoded samples into batches and persists them.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/pgntensor/internal/encode"
)

// Batch file layout (little-endian):
//
//	magic   [4]byte "PGTB"
//	version uint32
//	count   uint32
//	planes  uint32
//	tensors [count * planes * 64]float32
//	labels  [count]float32
//
// The whole stream may be wrapped in a zstd frame.
const (
	batchMagic   = "PGTB"
	batchVersion = 1
)

// zstd frame magic, little-endian 0xFD2FB528
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ErrBadBatch is returned for data that is not a batch this package wrote.
var ErrBadBatch = errors.New("malformed batch")

// Batch is a stack of encoded samples and their labels.
type Batch struct {
	// Tensors holds Len()*encode.TensorSize values, sample-major.
	Tensors []float32
	Labels  []float32
}

// Len returns the number of samples.
func (b *Batch) Len() int { return len(b.Labels) }

// Add appends one sample.
func (b *Batch) Add(t *encode.Tensor, label float32) {
	b.Tensors = t.Flatten(b.Tensors)
	b.Labels = append(b.Labels, label)
}

// Sample returns sample i as a tensor.
func (b *Batch) Sample(i int) (encode.Tensor, float32) {
	var t encode.Tensor
	t.Unflatten(b.Tensors[i*encode.TensorSize : (i+1)*encode.TensorSize])
	return t, b.Labels[i]
}

// Reset empties the batch, keeping its storage.
func (b *Batch) Reset() {
	b.Tensors = b.Tensors[:0]
	b.Labels = b.Labels[:0]
}

type batchHeader struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
	Planes  uint32
}

// MarshalBatch writes b to w, zstd-compressed if compress is set.
func MarshalBatch(w io.Writer, b *Batch, compress bool) error {
	if len(b.Tensors) != b.Len()*encode.TensorSize {
		return fmt.Errorf("%w: %d tensor values for %d labels", ErrBadBatch, len(b.Tensors), b.Len())
	}

	var enc *zstd.Encoder
	if compress {
		var err error
		enc, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w = enc
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	hdr := batchHeader{Version: batchVersion, Count: uint32(b.Len()), Planes: encode.NumPlanes}
	copy(hdr.Magic[:], batchMagic)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, b.Tensors); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, b.Labels); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}

// UnmarshalBatch reads a batch written by MarshalBatch, compressed or not.
func UnmarshalBatch(r io.Reader) (*Batch, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBatch, err)
	}
	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var hdr batchHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadBatch, err)
	}
	if string(hdr.Magic[:]) != batchMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadBatch, hdr.Magic[:])
	}
	if hdr.Version != batchVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadBatch, hdr.Version)
	}
	if hdr.Planes != encode.NumPlanes {
		return nil, fmt.Errorf("%w: %d planes", ErrBadBatch, hdr.Planes)
	}

	n := int(hdr.Count)
	b := &Batch{
		Tensors: make([]float32, n*encode.TensorSize),
		Labels:  make([]float32, n),
	}
	if err := binary.Read(src, binary.LittleEndian, b.Tensors); err != nil {
		return nil, fmt.Errorf("%w: tensors: %v", ErrBadBatch, err)
	}
	if err := binary.Read(src, binary.LittleEndian, b.Labels); err != nil {
		return nil, fmt.Errorf("%w: labels: %v", ErrBadBatch, err)
	}
	return b, nil
}
