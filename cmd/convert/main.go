package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/pgntensor/internal/config"
	"github.com/freeeve/pgntensor/internal/eco"
	"github.com/freeeve/pgntensor/internal/logx"
	"github.com/freeeve/pgntensor/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		inputPath  = flag.String("pgn", "", "Path to PGN archive (supports .zst, - for stdin)")
		outDir     = flag.String("out-dir", "", "Dataset directory (overrides sink.dir)")
		bucket     = flag.String("bucket", "", "GCS bucket (selects the gcs sink)")
		prefix     = flag.String("prefix", "", "GCS object prefix")
		ratingMin  = flag.Int("rating-min", 0, "Both ratings must exceed this")
		baseMin    = flag.Int("base-min", 0, "Minimum base time in seconds")
		batchSize  = flag.Int("batch-size", 0, "Samples per batch")
		maxBatches = flag.Int("max-batches", 0, "Stop after N batches (0 = unlimited)")
		maxRecords = flag.Int("max-records", 0, "Stop after N accepted records (0 = unlimited)")
		ecoDir     = flag.String("eco", "", "Directory of ECO .tsv files for the opening report")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: convert --pgn <file.pgn[.zst]> [--out-dir dir | --bucket b] [options]")
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
		case "bucket":
			cfg.Sink.Kind = config.SinkGCS
			cfg.Sink.Bucket = *bucket
		case "prefix":
			cfg.Sink.Prefix = *prefix
		case "rating-min":
			cfg.Filter.MinRating = *ratingMin
		case "base-min":
			cfg.Filter.MinBaseSeconds = *baseMin
		case "batch-size":
			cfg.Dataset.BatchSize = *batchSize
		case "max-batches":
			cfg.Dataset.MaxBatches = *maxBatches
		case "max-records":
			cfg.MaxRecords = *maxRecords
		case "eco":
			cfg.ECODir = *ecoDir
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	logger := logx.New(logx.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger.Info().
		Str("pgn", *inputPath).
		Str("sink", cfg.Sink.Kind).
		Int("rating_min", cfg.Filter.MinRating).
		Int("base_min", cfg.Filter.MinBaseSeconds).
		Int("batch_size", cfg.Dataset.BatchSize).
		Msg("starting convert")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var openings *eco.Database
	if cfg.ECODir != "" {
		openings = eco.NewDatabase()
		if err := openings.LoadDir(cfg.ECODir); err != nil {
			logger.Fatal().Err(err).Msg("load ECO database")
		}
		logger.Info().Int("openings", openings.Count()).Msg("loaded ECO database")
	}

	manifest, err := pipeline.ConvertFile(ctx, cfg, *inputPath, openings, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("convert")
	}

	logger.Info().
		Str("run_id", manifest.RunID).
		Uint64("scanned", manifest.Counters.RecordsScanned).
		Uint64("accepted", manifest.Counters.RecordsAccepted).
		Uint64("replayed", manifest.Counters.GamesReplayed).
		Uint64("samples", manifest.Counters.Samples).
		Uint64("batches", manifest.Counters.Batches).
		Msg("convert complete")
}
