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
	"github.com/freeeve/pgntensor/internal/logx"
	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/stats"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file")
		inputPath   = flag.String("pgn", "", "Path to PGN archive (supports .zst, - for stdin)")
		outputPath  = flag.String("out", "-", "Record output file (.zst compresses, - for stdout)")
		manifestDir = flag.String("manifest", "", "Directory for manifest.json (empty = skip)")
		ratingMin   = flag.Int("rating-min", 0, "Both ratings must exceed this")
		baseMin     = flag.Int("base-min", 0, "Minimum base time in seconds")
		maxRecords  = flag.Int("max-records", 0, "Stop after N accepted records (0 = unlimited)")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: extract --pgn <file.pgn[.zst]> [--out records.txt] [options]")
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
		case "rating-min":
			cfg.Filter.MinRating = *ratingMin
		case "base-min":
			cfg.Filter.MinBaseSeconds = *baseMin
		case "max-records":
			cfg.MaxRecords = *maxRecords
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	logger := logx.New(logx.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Out: os.Stderr})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger.Info().
		Str("pgn", *inputPath).
		Str("out", *outputPath).
		Int("rating_min", cfg.Filter.MinRating).
		Int("base_min", cfg.Filter.MinBaseSeconds).
		Msg("starting extract")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := archive.Open(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open archive")
	}
	defer src.Close()

	out, err := archive.Create(*outputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("create output")
	}

	collector := stats.NewCollector()
	manifest := stats.NewManifest("extract", *inputPath, *outputPath, cfg)

	err = record.Extract(ctx, src, record.ExtractConfig{
		Policy:         record.Policy{MinRating: cfg.Filter.MinRating, MinBaseSeconds: cfg.Filter.MinBaseSeconds},
		MaxHeaderLines: cfg.Filter.MaxHeaderLines,
		MaxRecords:     cfg.MaxRecords,
		Stats:          collector,
		Logger:         logger,
	}, func(rec record.GameRecord) error {
		return out.WriteLine(record.FormatLine(rec.ID, rec.MoveText))
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("extract")
	}

	manifest.Finish(collector)
	if *manifestDir != "" {
		if err := manifest.Save(*manifestDir); err != nil {
			logger.Error().Err(err).Msg("save manifest")
		}
	}
	logger.Info().
		Str("run_id", manifest.RunID).
		Uint64("accepted", manifest.Counters.RecordsAccepted).
		Uint64("rejected", manifest.Counters.RecordsRejected).
		Uint64("lines", manifest.Counters.LinesConsumed).
		Msg("extract complete")
}
