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
	"github.com/freeeve/pgntensor/internal/eco"
	"github.com/freeeve/pgntensor/internal/logx"
	"github.com/freeeve/pgntensor/internal/record"
	"github.com/freeeve/pgntensor/internal/replay"
	"github.com/freeeve/pgntensor/internal/stats"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file")
		inputPath   = flag.String("in", "", "Record file from extract (supports .zst, - for stdin)")
		outputPath  = flag.String("out", "-", "Position output file (.zst compresses, - for stdout)")
		manifestDir = flag.String("manifest", "", "Directory for manifest.json (empty = skip)")
		ecoDir      = flag.String("eco", "", "Directory of ECO .tsv files for the opening report")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: replay --in <records.txt[.zst]> [--out positions.txt] [options]")
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
		case "eco":
			cfg.ECODir = *ecoDir
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	logger := logx.New(logx.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Out: os.Stderr})
	logger.Info().Str("in", *inputPath).Str("out", *outputPath).Msg("starting replay")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var openings *eco.Database
	if cfg.ECODir != "" {
		openings = eco.NewDatabase()
		if err := openings.LoadDir(cfg.ECODir); err != nil {
			logger.Fatal().Err(err).Msg("load ECO database")
		}
		logger.Info().Int("openings", openings.Count()).Int("skipped", openings.Skipped()).Msg("loaded ECO database")
	}

	src, err := archive.Open(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open records")
	}
	defer src.Close()

	out, err := archive.Create(*outputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("create output")
	}

	collector := stats.NewCollector()
	manifest := stats.NewManifest("replay", *inputPath, *outputPath, cfg)
	stage := &replay.Stage{
		Replayer: replay.NewReplayer(openings),
		Stats:    collector,
		Logger:   logger,
	}
	if openings != nil {
		stage.Openings = make(map[string]int)
	}

	err = stage.Run(ctx, src, func(fen string, outcome record.Outcome) error {
		return out.WriteLine(replay.FormatPositionLine(fen, outcome))
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("replay")
	}

	manifest.Finish(collector)
	manifest.Openings = stage.Openings
	if *manifestDir != "" {
		if err := manifest.Save(*manifestDir); err != nil {
			logger.Error().Err(err).Msg("save manifest")
		}
	}
	logger.Info().
		Str("run_id", manifest.RunID).
		Uint64("replayed", manifest.Counters.GamesReplayed).
		Uint64("drawn", manifest.Counters.GamesDrawn).
		Uint64("move_errors", manifest.Counters.MoveErrors).
		Uint64("positions", manifest.Counters.Positions).
		Msg("replay complete")
}
