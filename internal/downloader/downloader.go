package downloader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rickgao/quotesync/internal/api"
	"github.com/rickgao/quotesync/internal/metrics"
	"github.com/rickgao/quotesync/internal/model"
	"github.com/rickgao/quotesync/internal/parser"
)

// Config holds orchestrator configuration.
type Config struct {
	Concurrency     int           // Max transfers in flight (default: 4)
	PollInterval    time.Duration // Max wait between control loop iterations (default: 100ms)
	ChunkSize       int           // Read buffer per transfer (default: 4096)
	TransferTimeout time.Duration // Per-transfer deadline (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:     4,
		PollInterval:    100 * time.Millisecond,
		ChunkSize:       4096,
		TransferTimeout: 30 * time.Second,
	}
}

// Opener starts quote transfers. *api.Client implements it.
type Opener interface {
	Open(ctx context.Context, symbol string) (*api.Transfer, error)
}

// Downloader runs quote transfers for a batch of securities.
type Downloader struct {
	cfg     Config
	client  Opener
	logger  *slog.Logger
	metrics *metrics.Sync
}

// New creates a new Downloader.
func New(cfg Config, client Opener, logger *slog.Logger, m *metrics.Sync) *Downloader {
	def := DefaultConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.TransferTimeout <= 0 {
		cfg.TransferTimeout = def.TransferTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Downloader{
		cfg:     cfg,
		client:  client,
		logger:  logger,
		metrics: m,
	}
}

type eventKind int

const (
	eventStarted eventKind = iota // Response headers arrived
	eventChunk                    // Body bytes arrived
	eventDone                     // Transfer finished; slot can be retired
)

// event is sent by a transfer goroutine to the control loop.
type event struct {
	slot   int
	kind   eventKind
	status int    // eventStarted
	chunk  []byte // eventChunk
	err    error  // eventDone: start or read failure, nil at EOF
}

// slot is one in-flight transfer. It is only touched by the control loop.
type slot struct {
	sec     model.Security
	parser  *parser.RecordParser
	cancel  context.CancelFunc
	started time.Time
	bytes   int64
}

// Run downloads and parses quotes for securities. It returns one outcome
// per security in completion order and never fails as a whole.
func (d *Downloader) Run(ctx context.Context, securities []model.Security) []parser.Outcome {
	start := time.Now()
	outcomes := make([]parser.Outcome, 0, len(securities))
	if len(securities) == 0 {
		return outcomes
	}

	// Transfers never block on a full channel for long: the loop below
	// receives until every admitted slot has sent eventDone.
	events := make(chan event, d.cfg.Concurrency*4)
	sem := semaphore.NewWeighted(int64(d.cfg.Concurrency))
	slots := make([]*slot, len(securities))

	wait := time.NewTimer(d.cfg.PollInterval)
	defer wait.Stop()

	next, active := 0, 0
	for next < len(securities) || active > 0 {
		// Admit queued securities into free slots.
		for next < len(securities) && sem.TryAcquire(1) {
			slots[next] = d.admit(ctx, next, securities[next], events)
			next++
			active++
			d.metrics.ActiveTransfers.Inc()
		}

		if !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}
		wait.Reset(d.cfg.PollInterval)

		select {
		case ev := <-events:
			s := slots[ev.slot]
			switch ev.kind {
			case eventStarted:
				s.parser = parser.NewRecordParser(s.sec, ev.status)
				// An empty feed applies the status check.
				s.parser.Feed(nil)
				if s.parser.Terminal() {
					s.cancel()
				}
			case eventChunk:
				s.bytes += int64(len(ev.chunk))
				s.parser.Feed(ev.chunk)
				if s.parser.Terminal() {
					// Nothing more is needed from this body.
					s.cancel()
				}
			case eventDone:
				outcomes = append(outcomes, d.retire(s, ev.err))
				slots[ev.slot] = nil
				sem.Release(1)
				active--
				d.metrics.ActiveTransfers.Dec()
			}
		case <-wait.C:
			d.logger.Debug("waiting for transfers",
				"active", active,
				"queued", len(securities)-next,
			)
		}
	}

	d.logger.Info("downloads complete",
		"securities", len(securities),
		"duration", time.Since(start),
	)

	return outcomes
}

// admit starts the transfer for sec in its own goroutine.
func (d *Downloader) admit(ctx context.Context, idx int, sec model.Security, events chan<- event) *slot {
	tctx, cancel := context.WithTimeout(ctx, d.cfg.TransferTimeout)
	s := &slot{
		sec:     sec,
		cancel:  cancel,
		started: time.Now(),
	}

	d.logger.Debug("downloading prices", "symbol", sec.Symbol)

	go d.transfer(tctx, idx, sec.Symbol, events)
	return s
}

// transfer performs one download and reports its progress as events. The
// final event is always eventDone.
func (d *Downloader) transfer(ctx context.Context, idx int, symbol string, events chan<- event) {
	tr, err := d.client.Open(ctx, symbol)
	if err != nil {
		events <- event{slot: idx, kind: eventDone, err: &parser.StartupError{Symbol: symbol, Err: err}}
		return
	}
	defer tr.Close()

	events <- event{slot: idx, kind: eventStarted, status: tr.StatusCode()}

	buf := make([]byte, d.cfg.ChunkSize)
	for {
		n, err := tr.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			events <- event{slot: idx, kind: eventChunk, chunk: chunk}
		}
		if errors.Is(err, io.EOF) {
			events <- event{slot: idx, kind: eventDone}
			return
		}
		if err != nil {
			events <- event{slot: idx, kind: eventDone, err: &parser.TransferError{Symbol: symbol, Err: err}}
			return
		}
	}
}

// retire releases a finished slot and extracts its outcome.
func (d *Downloader) retire(s *slot, err error) parser.Outcome {
	s.cancel()

	var out parser.Outcome
	switch {
	case s.parser == nil:
		// Never got response headers.
		out = parser.Outcome{Security: s.sec, Err: err}
	case err != nil && !s.parser.Terminal():
		out = parser.Outcome{Security: s.sec, Err: err}
	default:
		// Read errors after a terminal parse state come from our own cancel.
		s.parser.Finish()
		out = s.parser.Result()
	}

	kind := out.Kind()
	d.metrics.Transfers.WithLabelValues(kind.String()).Inc()
	d.metrics.BytesReceived.Add(float64(s.bytes))
	d.metrics.TransferDuration.Observe(time.Since(s.started).Seconds())

	if out.Err != nil {
		d.logger.Warn("quote transfer failed",
			"symbol", s.sec.Symbol,
			"outcome", kind.String(),
			"error", out.Err,
		)
	} else {
		d.logger.Debug("quote parsed",
			"symbol", s.sec.Symbol,
			"date", out.Record.Date.String(),
			"close", out.Record.Close,
			"bytes", s.bytes,
		)
	}

	return out
}
