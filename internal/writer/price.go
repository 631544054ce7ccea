package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/quotesync/internal/database"
	"github.com/rickgao/quotesync/internal/metrics"
	"github.com/rickgao/quotesync/internal/model"
)

const updatePriceSQL = `
	UPDATE zprice
	SET
		zvolume = $1,
		zclosingprice = $2,
		zhighprice = $3,
		zlowprice = $4,
		zopeningprice = $5
	WHERE
		z_ent = $6 AND z_opt = $7 AND
		zdate = $8 AND zsecurityid = $9
`

const insertPriceSQL = `
	INSERT INTO zprice (
		z_ent, z_opt, zdate, zsecurityid,
		zvolume, zclosingprice, zhighprice, zlowprice, zopeningprice
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	)
`

const refreshPrimaryKeySQL = `
	UPDATE z_primarykey
	SET z_max = (SELECT MAX(z_pk) FROM zprice)
	WHERE z_name = $1
`

// WriterMetrics counts reconciled records.
type WriterMetrics struct {
	Updates int64
	Inserts int64
	Errors  int64
}

// Written returns the number of records persisted.
func (m WriterMetrics) Written() int64 {
	return m.Updates + m.Inserts
}

// PriceWriter upserts price records inside a caller-owned transaction.
type PriceWriter struct {
	logger *slog.Logger
	prom   *metrics.Sync

	metrics WriterMetrics
}

// NewPriceWriter creates a new PriceWriter.
func NewPriceWriter(logger *slog.Logger, m *metrics.Sync) *PriceWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	return &PriceWriter{
		logger: logger,
		prom:   m,
	}
}

// Stats returns the counts of the last Reconcile call.
func (w *PriceWriter) Stats() WriterMetrics {
	return w.metrics
}

// Reconcile upserts records into tx and refreshes the price primary key
// counter. A record whose statements fail is logged and skipped. It returns
// the number of records written; an error means the counter refresh failed
// and the transaction must be rolled back.
func (w *PriceWriter) Reconcile(ctx context.Context, tx database.Tx, records []model.PriceRecord) (int, error) {
	start := time.Now()
	w.metrics = WriterMetrics{}

	for _, rec := range records {
		var action string
		err := tx.Savepoint(ctx, func(e database.Execer) error {
			var err error
			action, err = w.upsert(ctx, e, rec)
			return err
		})
		if err != nil {
			w.metrics.Errors++
			w.prom.WriteErrors.Inc()
			w.logger.Error("price write failed",
				"symbol", rec.Security.Symbol,
				"date", rec.Date.String(),
				"error", err,
			)
			continue
		}

		switch action {
		case "update":
			w.metrics.Updates++
			w.logger.Info("existing price updated", "symbol", rec.Security.Symbol, "date", rec.Date.String())
		case "insert":
			w.metrics.Inserts++
			w.logger.Info("new price created", "symbol", rec.Security.Symbol, "date", rec.Date.String())
		}
		w.prom.RowsWritten.WithLabelValues(action).Inc()
	}

	if _, err := tx.Exec(ctx, refreshPrimaryKeySQL, model.PricePrimaryKeyName); err != nil {
		return int(w.metrics.Written()), fmt.Errorf("refresh price primary key: %w", err)
	}
	w.logger.Debug("price primary key refreshed")

	w.logger.Info("persisted prices",
		"count", w.metrics.Written(),
		"updated", w.metrics.Updates,
		"inserted", w.metrics.Inserts,
		"errors", w.metrics.Errors,
		"duration", time.Since(start),
	)

	return int(w.metrics.Written()), nil
}

// upsert writes one record and reports which statement stored it.
func (w *PriceWriter) upsert(ctx context.Context, e database.Execer, rec model.PriceRecord) (string, error) {
	prices, err := rec.Decimals()
	if err != nil {
		return "", fmt.Errorf("convert prices: %w", err)
	}
	date := rec.Date.StoreTime()

	n, err := e.Exec(ctx, updatePriceSQL,
		rec.Volume, prices.Close, prices.High, prices.Low, prices.Open,
		model.PriceEntity, model.PriceOptimisticLock, date, rec.Security.ID)
	if err != nil {
		return "", fmt.Errorf("update price: %w", err)
	}
	if n > 0 {
		return "update", nil
	}

	if _, err := e.Exec(ctx, insertPriceSQL,
		model.PriceEntity, model.PriceOptimisticLock, date, rec.Security.ID,
		rec.Volume, prices.Close, prices.High, prices.Low, prices.Open); err != nil {
		return "", fmt.Errorf("insert price: %w", err)
	}
	return "insert", nil
}
