// Package ingest converts every PGN archive found in a directory, one
// dataset per archive, and moves finished archives aside.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgntensor/internal/archive"
)

// ConvertFunc converts the archive at path into the dataset called name.
type ConvertFunc func(ctx context.Context, path, name string) error

// Config configures the ingest worker.
type Config struct {
	WatchDir     string // Directory holding PGN archives
	ProcessedDir string // Directory to move converted archives to
	Workers      int    // Archives converted in parallel (default 1)
	Logger       zerolog.Logger
}

// Worker converts the archives in a directory.
type Worker struct {
	cfg     Config
	convert ConvertFunc
	log     zerolog.Logger
}

// Result summarises one ProcessAll call.
type Result struct {
	Processed []string
	Failed    map[string]error
}

// NewWorker creates a new ingest worker.
func NewWorker(cfg Config, convert ConvertFunc) (*Worker, error) {
	if cfg.WatchDir == "" {
		return nil, errors.New("ingest: watch dir is required")
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = filepath.Join(cfg.WatchDir, "processed")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	// Ensure directories exist
	if err := os.MkdirAll(cfg.ProcessedDir, 0755); err != nil {
		return nil, err
	}

	return &Worker{cfg: cfg, convert: convert, log: cfg.Logger}, nil
}

// DatasetName derives a dataset name from an archive file name:
// "lichess_2024-01.pgn.zst" becomes "lichess_2024-01".
func DatasetName(file string) string {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, ".pgn")
}

// PendingFiles lists the PGN archives in the watch directory, sorted by name.
func (w *Worker) PendingFiles() ([]string, error) {
	entries, err := os.ReadDir(w.cfg.WatchDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if archive.IsPGNFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ProcessAll converts every pending archive once. Failed archives stay in
// the watch directory; the error return is reserved for listing failures
// and cancellation.
func (w *Worker) ProcessAll(ctx context.Context) (Result, error) {
	res := Result{Failed: make(map[string]error)}

	files, err := w.PendingFiles()
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		w.log.Info().Str("dir", w.cfg.WatchDir).Msg("no PGN files to process")
		return res, nil
	}
	w.log.Info().Int("files", len(files)).Int("workers", w.cfg.Workers).Msg("found PGN files to process")

	type fileResult struct {
		name string
		err  error
	}

	fileChan := make(chan string, len(files))
	resultChan := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for name := range fileChan {
				select {
				case <-ctx.Done():
					resultChan <- fileResult{name: name, err: ctx.Err()}
					continue
				default:
				}
				resultChan <- fileResult{name: name, err: w.processFile(ctx, workerID, name)}
			}
		}(i)
	}

	for _, name := range files {
		fileChan <- name
	}
	close(fileChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results and move processed files
	for result := range resultChan {
		if result.err != nil {
			w.log.Error().Err(result.err).Str("file", result.name).Msg("convert failed")
			res.Failed[result.name] = result.err
			continue
		}

		srcPath := filepath.Join(w.cfg.WatchDir, result.name)
		destPath := filepath.Join(w.cfg.ProcessedDir, result.name)
		if err := os.Rename(srcPath, destPath); err != nil {
			w.log.Warn().Err(err).Str("file", result.name).Msg("move to processed failed")
		} else {
			w.log.Info().Str("file", result.name).Msg("moved to processed")
		}
		res.Processed = append(res.Processed, result.name)
	}
	sort.Strings(res.Processed)

	w.log.Info().Int("processed", len(res.Processed)).Int("failed", len(res.Failed)).Msg("ingest complete")
	return res, ctx.Err()
}

func (w *Worker) processFile(ctx context.Context, workerID int, name string) error {
	path := filepath.Join(w.cfg.WatchDir, name)
	dataset := DatasetName(name)
	w.log.Info().Str("path", path).Str("dataset", dataset).Int("worker", workerID).Msg("starting file convert")

	start := time.Now()
	if err := w.convert(ctx, path, dataset); err != nil {
		return fmt.Errorf("convert %s: %w", name, err)
	}
	w.log.Info().
		Str("file", name).
		Int("worker", workerID).
		Dur("elapsed", time.Since(start)).
		Msg("file convert complete")
	return nil
}
