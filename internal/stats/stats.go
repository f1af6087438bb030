// Package stats tracks run counters and persists the run manifest.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Counters is a point-in-time copy of a Collector.
type Counters struct {
	RecordsScanned  uint64 `json:"records_scanned"`
	RecordsAccepted uint64 `json:"records_accepted"`
	RecordsRejected uint64 `json:"records_rejected"`
	LinesConsumed   uint64 `json:"lines_consumed"`
	GamesReplayed   uint64 `json:"games_replayed"`
	GamesDrawn      uint64 `json:"games_drawn"`
	GamesUnknown    uint64 `json:"games_unknown"`
	MoveErrors      uint64 `json:"move_errors"`
	Positions       uint64 `json:"positions"`
	Samples         uint64 `json:"samples"`
	Batches         uint64 `json:"batches"`
}

// Collector holds atomic run counters. A nil *Collector ignores updates.
type Collector struct {
	recordsScanned  uint64
	recordsAccepted uint64
	recordsRejected uint64
	linesConsumed   uint64
	gamesReplayed   uint64
	gamesDrawn      uint64
	gamesUnknown    uint64
	moveErrors      uint64
	positions       uint64
	samples         uint64
	batches         uint64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordScanned counts one record read from the archive.
func (c *Collector) RecordScanned(accepted bool) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.recordsScanned, 1)
	if accepted {
		atomic.AddUint64(&c.recordsAccepted, 1)
	} else {
		atomic.AddUint64(&c.recordsRejected, 1)
	}
}

// SetLinesConsumed records the archive cursor position.
func (c *Collector) SetLinesConsumed(n int64) {
	if c == nil || n < 0 {
		return
	}
	atomic.StoreUint64(&c.linesConsumed, uint64(n))
}

// GameReplayed counts a fully replayed game and the positions it produced.
func (c *Collector) GameReplayed(positions int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.gamesReplayed, 1)
	atomic.AddUint64(&c.positions, uint64(positions))
}

// GameDrawn counts a drawn game skipped during replay.
func (c *Collector) GameDrawn() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.gamesDrawn, 1)
}

// GameUnknown counts a game skipped for lack of a result.
func (c *Collector) GameUnknown() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.gamesUnknown, 1)
}

// MoveError counts a game whose move-text failed to replay.
func (c *Collector) MoveError() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.moveErrors, 1)
}

// SampleEncoded counts one encoded sample.
func (c *Collector) SampleEncoded() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.samples, 1)
}

// BatchWritten counts one persisted batch.
func (c *Collector) BatchWritten() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.batches, 1)
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Counters {
	if c == nil {
		return Counters{}
	}
	return Counters{
		RecordsScanned:  atomic.LoadUint64(&c.recordsScanned),
		RecordsAccepted: atomic.LoadUint64(&c.recordsAccepted),
		RecordsRejected: atomic.LoadUint64(&c.recordsRejected),
		LinesConsumed:   atomic.LoadUint64(&c.linesConsumed),
		GamesReplayed:   atomic.LoadUint64(&c.gamesReplayed),
		GamesDrawn:      atomic.LoadUint64(&c.gamesDrawn),
		GamesUnknown:    atomic.LoadUint64(&c.gamesUnknown),
		MoveErrors:      atomic.LoadUint64(&c.moveErrors),
		Positions:       atomic.LoadUint64(&c.positions),
		Samples:         atomic.LoadUint64(&c.samples),
		Batches:         atomic.LoadUint64(&c.batches),
	}
}

// Progress rate-limits progress log lines.
type Progress struct {
	log      zerolog.Logger
	stats    *Collector
	start    time.Time
	last     time.Time
	interval time.Duration
}

// NewProgress logs c every interval (10s if zero).
func NewProgress(log zerolog.Logger, c *Collector, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	now := time.Now()
	return &Progress{log: log, stats: c, start: now, last: now, interval: interval}
}

// Tick logs a progress line if the interval has elapsed.
func (p *Progress) Tick(stage string) {
	if time.Since(p.last) < p.interval {
		return
	}
	p.emit(stage, "progress")
	p.last = time.Now()
}

// Done logs the final counters.
func (p *Progress) Done(stage string) {
	p.emit(stage, "complete")
}

func (p *Progress) emit(stage, msg string) {
	s := p.stats.Snapshot()
	elapsed := time.Since(p.start)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(s.RecordsScanned) / secs
	}
	p.log.Info().
		Str("stage", stage).
		Uint64("scanned", s.RecordsScanned).
		Uint64("accepted", s.RecordsAccepted).
		Uint64("replayed", s.GamesReplayed).
		Uint64("move_errors", s.MoveErrors).
		Uint64("positions", s.Positions).
		Uint64("samples", s.Samples).
		Uint64("batches", s.Batches).
		Float64("records_per_sec", rate).
		Dur("elapsed", elapsed).
		Msg(stage + " " + msg)
}
