package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/freeeve/pgntensor/internal/config"
	"github.com/freeeve/pgntensor/internal/eco"
	"github.com/freeeve/pgntensor/internal/ingest"
	"github.com/freeeve/pgntensor/internal/logx"
	"github.com/freeeve/pgntensor/internal/pipeline"
)

func main() {
	var (
		configPath   = flag.String("config", "", "YAML config file")
		watchDir     = flag.String("dir", "", "Directory of PGN archives to convert")
		processedDir = flag.String("processed", "", "Where converted archives are moved (default <dir>/processed)")
		workers      = flag.Int("workers", 1, "Archives converted in parallel")
		outDir       = flag.String("out-dir", "", "Dataset root directory (overrides sink.dir)")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *watchDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest --dir <pgn dir> [--out-dir datasets] [options]")
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
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	logger := logx.New(logx.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger.Info().
		Str("dir", *watchDir).
		Str("sink", pipeline.SinkName(cfg.Sink)).
		Int("workers", *workers).
		Msg("starting ingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var openings *eco.Database
	if cfg.ECODir != "" {
		openings = eco.NewDatabase()
		if err := openings.LoadDir(cfg.ECODir); err != nil {
			logger.Fatal().Err(err).Msg("load ECO database")
		}
	}

	// each archive gets its own dataset under the configured sink
	convert := func(ctx context.Context, input, name string) error {
		fileCfg := cfg
		switch cfg.Sink.Kind {
		case config.SinkGCS:
			fileCfg.Sink.Prefix = path.Join(cfg.Sink.Prefix, name)
		default:
			fileCfg.Sink.Dir = filepath.Join(cfg.Sink.Dir, name)
		}
		log := logger.With().Str("dataset", name).Logger()
		m, err := pipeline.ConvertFile(ctx, fileCfg, input, openings, log)
		if err != nil {
			return err
		}
		log.Info().
			Str("run_id", m.RunID).
			Uint64("samples", m.Counters.Samples).
			Uint64("batches", m.Counters.Batches).
			Msg("dataset written")
		return nil
	}

	w, err := ingest.NewWorker(ingest.Config{
		WatchDir:     *watchDir,
		ProcessedDir: *processedDir,
		Workers:      *workers,
		Logger:       logger,
	}, convert)
	if err != nil {
		logger.Fatal().Err(err).Msg("create ingest worker")
	}

	res, err := w.ProcessAll(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingest")
	}
	if len(res.Failed) > 0 {
		logger.Error().Int("failed", len(res.Failed)).Msg("some archives failed to convert")
		os.Exit(1)
	}
}
