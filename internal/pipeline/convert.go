package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/archive"
	"github.com/freeeve/pgntensor/internal/config"
	"github.com/freeeve/pgntensor/internal/dataset"
	"github.com/freeeve/pgntensor/internal/eco"
	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/replay"
	"github.com/freeeve/pgntensor/internal/stats"
)

// New builds a pipeline for cfg writing to sink. openings may be nil.
func New(cfg config.Config, sink dataset.Sink, openings *eco.Database, c *stats.Collector, log zerolog.Logger) *Pipeline {
	stage := &replay.Stage{Replayer: replay.NewReplayer(openings), Stats: c, Logger: log}
	if openings != nil {
		stage.Openings = make(map[string]int)
	}
	return &Pipeline{
		Extract: record.ExtractConfig{
			Policy:         record.Policy{MinRating: cfg.Filter.MinRating, MinBaseSeconds: cfg.Filter.MinBaseSeconds},
			MaxHeaderLines: cfg.Filter.MaxHeaderLines,
			MaxRecords:     cfg.MaxRecords,
			Stats:          c,
			Logger:         log,
		},
		Replay: stage,
		Encoder: &dataset.Encoder{
			Acc: dataset.NewAccumulator(sink, dataset.AccumulatorConfig{
				BatchSize:    cfg.Dataset.BatchSize,
				MaxBatches:   cfg.Dataset.MaxBatches,
				Compress:     cfg.Dataset.Compress,
				FlushPartial: cfg.Dataset.FlushPartial,
				Stats:        c,
				Logger:       log,
			}),
			Stats:  c,
			Logger: log,
		},
	}
}

// SinkName describes where a sink config writes.
func SinkName(s config.Sink) string {
	if s.Kind == config.SinkGCS {
		return "gs://" + s.Bucket + "/" + s.Prefix
	}
	return s.Dir
}

// ConvertFile runs the whole conversion of the archive at input into the
// sink described by cfg.Sink, and stores a manifest next to the batches.
func ConvertFile(ctx context.Context, cfg config.Config, input string, openings *eco.Database, log zerolog.Logger) (*stats.Manifest, error) {
	src, err := archive.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	sink, err := dataset.OpenSink(ctx, cfg.Sink)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	c := stats.NewCollector()
	manifest := stats.NewManifest("convert", input, SinkName(cfg.Sink), cfg)
	p := New(cfg, sink, openings, c, log)
	if err := p.Run(ctx, src); err != nil {
		return nil, err
	}

	manifest.Finish(c)
	manifest.Openings = p.Replay.Openings
	data, err := manifest.JSON()
	if err != nil {
		return nil, err
	}
	if err := sink.Put(ctx, stats.ManifestFileName, data); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	return manifest, nil
}
