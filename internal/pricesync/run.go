package pricesync

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/quotesync/internal/database"
	"github.com/rickgao/quotesync/internal/metrics"
	"github.com/rickgao/quotesync/internal/model"
	"github.com/rickgao/quotesync/internal/parser"
)

// Downloader fetches and parses quotes. *downloader.Downloader implements it.
type Downloader interface {
	Run(ctx context.Context, securities []model.Security) []parser.Outcome
}

// Reconciler persists parsed quotes. *writer.PriceWriter implements it.
type Reconciler interface {
	Reconcile(ctx context.Context, tx database.Tx, records []model.PriceRecord) (int, error)
}

// Limits bound the securities taken from the store.
type Limits struct {
	MaxIDLength     int
	MaxSymbolLength int
}

// Deps are the collaborators of a run.
type Deps struct {
	Store      database.Store
	Downloader Downloader
	Writer     Reconciler
	Limits     Limits
	Logger     *slog.Logger
	Metrics    *metrics.Sync
}

// Summary reports what a run did.
type Summary struct {
	Securities int // Securities enumerated within bounds
	Skipped    int // Securities outside the bounds
	Parsed     int // Quotes parsed successfully
	Failed     int // Quotes that failed to download or parse
	Written    int // Price rows updated or inserted
	Duration   time.Duration
}

// Run performs one synchronization. A returned error is always a
// *FatalError; the summary is filled as far as the run got.
func Run(ctx context.Context, deps Deps) (Summary, error) {
	start := time.Now()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	var summary Summary
	finish := func() Summary {
		summary.Duration = time.Since(start)
		return summary
	}

	all, err := deps.Store.Securities(ctx)
	if err != nil {
		return finish(), &FatalError{Stage: StageEnumerate, Err: err}
	}

	securities := make([]model.Security, 0, len(all))
	for _, sec := range all {
		if !sec.Within(deps.Limits.MaxIDLength, deps.Limits.MaxSymbolLength) {
			summary.Skipped++
			logger.Debug("security skipped", "id", sec.ID, "symbol", sec.Symbol)
			continue
		}
		securities = append(securities, sec)
	}
	summary.Securities = len(securities)

	logger.Info("found securities",
		"count", len(securities),
		"symbols", symbolList(securities),
		"skipped", summary.Skipped,
	)

	outcomes := deps.Downloader.Run(ctx, securities)

	records := make([]model.PriceRecord, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Err != nil {
			summary.Failed++
			logDiagnostic(logger, out)
			continue
		}
		summary.Parsed++
		records = append(records, *out.Record)
	}

	tx, err := deps.Store.Begin(ctx)
	if err != nil {
		return finish(), &FatalError{Stage: StagePersist, Err: err}
	}

	written, err := deps.Writer.Reconcile(ctx, tx, records)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return finish(), &FatalError{Stage: StagePersist, Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return finish(), &FatalError{Stage: StagePersist, Err: err}
	}
	summary.Written = written

	m.LastSuccess.SetToCurrentTime()
	logger.Info("security price synchronization complete",
		"securities", summary.Securities,
		"parsed", summary.Parsed,
		"failed", summary.Failed,
		"written", summary.Written,
		"duration", time.Since(start),
	)

	return finish(), nil
}

// symbolList renders symbols as "A, B, C".
func symbolList(securities []model.Security) string {
	var b strings.Builder
	for i, sec := range securities {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sec.Symbol)
	}
	return b.String()
}

// logDiagnostic logs why a security produced no quote.
func logDiagnostic(logger *slog.Logger, out parser.Outcome) {
	var (
		pe *parser.ParseError
		te *parser.TransportError
	)
	switch {
	case errors.As(out.Err, &pe):
		logger.Warn("quote not parsed",
			"symbol", out.Security.Symbol,
			"phase", pe.Phase.String(),
			"position", pe.Pos,
			"offset", pe.Offset,
			"reason", pe.Reason,
		)
		if len(pe.Raw) > 0 {
			logger.Debug("unparsed response", "symbol", out.Security.Symbol, "raw", string(pe.Raw))
		}
	case errors.As(out.Err, &te):
		logger.Warn("quote not available",
			"symbol", out.Security.Symbol,
			"status", te.StatusCode,
		)
	default:
		logger.Warn("quote download failed",
			"symbol", out.Security.Symbol,
			"outcome", out.Kind().String(),
			"error", out.Err,
		)
	}
}
