package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/pgntensor/internal/archive"
	"github.com/freeeve/pgntensor/internal/config"
	"github.com/freeeve/pgntensor/internal/dataset"
	"github.com/freeeve/pgntensor/internal/logx"
	"github.com/freeeve/pgntensor/internal/pipeline"
	"github.com/freeeve/pgntensor/internal/stats"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		inputPath  = flag.String("in", "", "Position file from replay (supports .zst, - for stdin)")
		outDir     = flag.String("out-dir", "", "Dataset directory (overrides sink.dir)")
		batchSize  = flag.Int("batch-size", 0, "Samples per batch")
		maxBatches = flag.Int("max-batches", 0, "Stop after N batches (0 = unlimited)")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: encode --in <positions.txt[.zst]> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out-dir":
			cfg.Sink.Kind = config.SinkDir
			cfg.Sink.Dir = *outDir
		case "batch-size":
			cfg.Dataset.BatchSize = *batchSize
		case "max-batches":
			cfg.Dataset.MaxBatches = *maxBatches
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	logger := logx.New(logx.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger.Info().
		Str("in", *inputPath).
		Str("sink", cfg.Sink.Kind).
		Int("batch_size", cfg.Dataset.BatchSize).
		Int("max_batches", cfg.Dataset.MaxBatches).
		Msg("starting encode")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := archive.Open(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open positions")
	}
	defer src.Close()

	sink, err := dataset.OpenSink(ctx, cfg.Sink)
	if err != nil {
		logger.Fatal().Err(err).Msg("open sink")
	}
	defer sink.Close()

	collector := stats.NewCollector()
	manifest := stats.NewManifest("encode", *inputPath, pipeline.SinkName(cfg.Sink), cfg)
	enc := &dataset.Encoder{
		Acc: dataset.NewAccumulator(sink, dataset.AccumulatorConfig{
			BatchSize:    cfg.Dataset.BatchSize,
			MaxBatches:   cfg.Dataset.MaxBatches,
			Compress:     cfg.Dataset.Compress,
			FlushPartial: cfg.Dataset.FlushPartial,
			Stats:        collector,
			Logger:       logger,
		}),
		Stats:  collector,
		Logger: logger,
	}
	if err := enc.Run(ctx, src); err != nil {
		logger.Fatal().Err(err).Msg("encode")
	}

	manifest.Finish(collector)
	if data, err := manifest.JSON(); err != nil {
		logger.Error().Err(err).Msg("marshal manifest")
	} else if err := sink.Put(ctx, stats.ManifestFileName, data); err != nil {
		logger.Error().Err(err).Msg("save manifest")
	}
	logger.Info().
		Str("run_id", manifest.RunID).
		Uint64("samples", manifest.Counters.Samples).
		Uint64("batches", manifest.Counters.Batches).
		Msg("encode complete")
}
