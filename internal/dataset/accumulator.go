package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/encode"
	"github.com/freeeve/pgntensor/internal/stats"
)

// ErrBatchLimit is returned by Add once the configured number of batches
// has been written. Callers treat it as a normal stop.
var ErrBatchLimit = errors.New("batch limit reached")

// AccumulatorConfig configures an Accumulator.
type AccumulatorConfig struct {
	BatchSize    int
	MaxBatches   int // 0 = unlimited
	Compress     bool
	FlushPartial bool
	Stats        *stats.Collector // optional
	Logger       zerolog.Logger
}

// Accumulator collects samples and writes a batch to its sink every
// BatchSize samples. Batches are numbered from 1 in emission order.
type Accumulator struct {
	cfg     AccumulatorConfig
	sink    Sink
	batch   Batch
	written int
	buf     bytes.Buffer
}

// NewAccumulator returns an Accumulator writing to sink.
func NewAccumulator(sink Sink, cfg AccumulatorConfig) *Accumulator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	initial := min(cfg.BatchSize, 4096)
	return &Accumulator{
		cfg:  cfg,
		sink: sink,
		batch: Batch{
			Tensors: make([]float32, 0, initial*encode.TensorSize),
			Labels:  make([]float32, 0, initial),
		},
	}
}

// Add appends one sample and writes the batch when it is full.
func (a *Accumulator) Add(ctx context.Context, t *encode.Tensor, label float32) error {
	if a.limitReached() {
		return ErrBatchLimit
	}
	a.batch.Add(t, label)
	a.cfg.Stats.SampleEncoded()
	if a.batch.Len() < a.cfg.BatchSize {
		return nil
	}
	if err := a.write(ctx); err != nil {
		return err
	}
	if a.limitReached() {
		return ErrBatchLimit
	}
	return nil
}

// Flush writes any buffered samples as a final short batch if FlushPartial
// is set; otherwise they are dropped.
func (a *Accumulator) Flush(ctx context.Context) error {
	if a.batch.Len() == 0 {
		return nil
	}
	if !a.cfg.FlushPartial || a.limitReached() {
		a.cfg.Logger.Info().Int("samples", a.batch.Len()).Msg("dropping partial batch")
		a.batch.Reset()
		return nil
	}
	return a.write(ctx)
}

// Batches returns the number of batches written.
func (a *Accumulator) Batches() int { return a.written }

// Pending returns the number of buffered samples.
func (a *Accumulator) Pending() int { return a.batch.Len() }

func (a *Accumulator) limitReached() bool {
	return a.cfg.MaxBatches > 0 && a.written >= a.cfg.MaxBatches
}

func (a *Accumulator) write(ctx context.Context) error {
	a.buf.Reset()
	if err := MarshalBatch(&a.buf, &a.batch, a.cfg.Compress); err != nil {
		return fmt.Errorf("marshal batch %d: %w", a.written+1, err)
	}
	key := BatchKey(a.written+1, a.cfg.Compress)
	if err := a.sink.Put(ctx, key, a.buf.Bytes()); err != nil {
		return err
	}
	a.written++
	a.cfg.Stats.BatchWritten()
	a.cfg.Logger.Info().
		Str("key", key).
		Int("samples", a.batch.Len()).
		Int("bytes", a.buf.Len()).
		Msg("batch written")
	a.batch.Reset()
	return nil
}
