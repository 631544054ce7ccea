package writer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rickgao/quotesync/internal/database"
	"github.com/rickgao/quotesync/internal/metrics"
	"github.com/rickgao/quotesync/internal/model"
)

var (
	aaa = model.Security{ID: "11111111-1111-1111-1111-111111111111", Symbol: "AAA"}
	bbb = model.Security{ID: "22222222-2222-2222-2222-222222222222", Symbol: "BBB"}
)

type priceRow struct {
	date   int64
	volume int64
	open   float64
	high   float64
	low    float64
	close  float64
}

func newTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()
	store, err := database.CreateSQLite(context.Background(), filepath.Join(t.TempDir(), "accountsData.ibank"))
	if err != nil {
		t.Fatalf("CreateSQLite failed: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func reconcile(t *testing.T, store *database.SQLiteStore, w *PriceWriter, records []model.PriceRecord) int {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	n, err := w.Reconcile(ctx, tx, records)
	if err != nil {
		tx.Rollback(ctx)
		t.Fatalf("Reconcile failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return n
}

func prices(t *testing.T, store *database.SQLiteStore, sec model.Security) []priceRow {
	t.Helper()
	rows, err := store.DB().Query(`
		SELECT CAST(zdate AS INTEGER), zvolume, zopeningprice, zhighprice, zlowprice, zclosingprice
		FROM zprice
		WHERE z_ent = 42 AND z_opt = 1 AND zsecurityid = $1
		ORDER BY zdate`, sec.ID)
	if err != nil {
		t.Fatalf("query prices: %v", err)
	}
	defer rows.Close()

	var out []priceRow
	for rows.Next() {
		var r priceRow
		if err := rows.Scan(&r.date, &r.volume, &r.open, &r.high, &r.low, &r.close); err != nil {
			t.Fatalf("scan price: %v", err)
		}
		out = append(out, r)
	}
	return out
}

func primaryKeyMax(t *testing.T, store *database.SQLiteStore) int64 {
	t.Helper()
	var max int64
	if err := store.DB().QueryRow("SELECT z_max FROM z_primarykey WHERE z_name = 'Price'").Scan(&max); err != nil {
		t.Fatalf("query z_max: %v", err)
	}
	return max
}

func record(sec model.Security, day int, close string, volume int64) model.PriceRecord {
	return model.PriceRecord{
		Security: sec,
		Date:     model.NewDate(2021, time.March, day),
		Open:     "10.0",
		High:     "11.0",
		Low:      "9.5",
		Close:    close,
		Volume:   volume,
	}
}

func TestPriceWriter_Insert(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	rec := record(aaa, 5, "10.9", 12345)
	if n := reconcile(t, store, w, []model.PriceRecord{rec}); n != 1 {
		t.Errorf("written = %d, want 1", n)
	}

	got := prices(t, store, aaa)
	if len(got) != 1 {
		t.Fatalf("expected 1 price row, got %d", len(got))
	}
	want := priceRow{date: rec.Date.StoreTime(), volume: 12345, open: 10.0, high: 11.0, low: 9.5, close: 10.9}
	if got[0] != want {
		t.Errorf("row = %+v, want %+v", got[0], want)
	}

	stats := w.Stats()
	if stats.Inserts != 1 || stats.Updates != 0 || stats.Errors != 0 {
		t.Errorf("stats = %+v, want 1 insert", stats)
	}
	if got := primaryKeyMax(t, store); got != 1 {
		t.Errorf("z_max = %d, want 1", got)
	}
}

func TestPriceWriter_Idempotent(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	records := []model.PriceRecord{record(aaa, 5, "10.9", 12345), record(bbb, 5, "20.25", 500)}
	reconcile(t, store, w, records)
	first := append(prices(t, store, aaa), prices(t, store, bbb)...)

	if n := reconcile(t, store, w, records); n != 2 {
		t.Errorf("second run written = %d, want 2", n)
	}
	second := append(prices(t, store, aaa), prices(t, store, bbb)...)

	if len(first) != len(second) {
		t.Fatalf("row count changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
	if stats := w.Stats(); stats.Updates != 2 || stats.Inserts != 0 {
		t.Errorf("stats = %+v, want 2 updates", stats)
	}
	if got := primaryKeyMax(t, store); got != 2 {
		t.Errorf("z_max = %d, want 2", got)
	}
}

func TestPriceWriter_UpdateReplacesValues(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	reconcile(t, store, w, []model.PriceRecord{record(aaa, 5, "10.9", 12345)})
	reconcile(t, store, w, []model.PriceRecord{record(aaa, 5, "11.25", 99)})

	got := prices(t, store, aaa)
	if len(got) != 1 {
		t.Fatalf("expected 1 price row, got %d", len(got))
	}
	if got[0].close != 11.25 || got[0].volume != 99 {
		t.Errorf("row = %+v, want close 11.25 volume 99", got[0])
	}
}

func TestPriceWriter_NewDateInserts(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	reconcile(t, store, w, []model.PriceRecord{record(aaa, 4, "10.5", 11111)})
	reconcile(t, store, w, []model.PriceRecord{record(aaa, 5, "10.9", 12345)})

	got := prices(t, store, aaa)
	if len(got) != 2 {
		t.Fatalf("expected 2 price rows, got %d", len(got))
	}
	if got[0].date >= got[1].date {
		t.Errorf("dates not ordered: %d, %d", got[0].date, got[1].date)
	}
}

func TestPriceWriter_StepFailureSkipsRecord(t *testing.T) {
	store := newTestStore(t)
	_, err := store.DB().Exec(`
		CREATE TRIGGER reject_bbb BEFORE INSERT ON zprice
		WHEN NEW.zsecurityid = '22222222-2222-2222-2222-222222222222'
		BEGIN
			SELECT RAISE(ABORT, 'rejected');
		END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	m := metrics.New()
	w := NewPriceWriter(nil, m)

	records := []model.PriceRecord{record(aaa, 5, "10.9", 12345), record(bbb, 5, "20.25", 500)}
	if n := reconcile(t, store, w, records); n != 1 {
		t.Errorf("written = %d, want 1", n)
	}

	if got := prices(t, store, aaa); len(got) != 1 {
		t.Errorf("AAA rows = %d, want 1", len(got))
	}
	if got := prices(t, store, bbb); len(got) != 0 {
		t.Errorf("BBB rows = %d, want 0", len(got))
	}
	if stats := w.Stats(); stats.Errors != 1 {
		t.Errorf("errors = %d, want 1", stats.Errors)
	}
	if v := testutil.ToFloat64(m.WriteErrors); v != 1 {
		t.Errorf("write errors metric = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.RowsWritten.WithLabelValues("insert")); v != 1 {
		t.Errorf("inserted rows metric = %v, want 1", v)
	}
}

func TestPriceWriter_BadPriceSkipsRecord(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	bad := record(bbb, 5, "1.2.3", 1)
	if n := reconcile(t, store, w, []model.PriceRecord{bad, record(aaa, 5, "10.9", 1)}); n != 1 {
		t.Errorf("written = %d, want 1", n)
	}
	if stats := w.Stats(); stats.Errors != 1 {
		t.Errorf("errors = %d, want 1", stats.Errors)
	}
}

func TestPriceWriter_PrimaryKeyRefreshFailureIsFatal(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.DB().Exec("DROP TABLE z_primarykey"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	ctx := context.Background()
	w := NewPriceWriter(nil, nil)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = w.Reconcile(ctx, tx, []model.PriceRecord{record(aaa, 5, "10.9", 12345)})
	if err == nil || !strings.Contains(err.Error(), "refresh price primary key") {
		t.Fatalf("expected primary key refresh error, got %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if got := prices(t, store, aaa); len(got) != 0 {
		t.Errorf("rows after rollback = %d, want 0", len(got))
	}
}

func TestPriceWriter_Empty(t *testing.T) {
	store := newTestStore(t)
	w := NewPriceWriter(nil, nil)

	if n := reconcile(t, store, w, nil); n != 0 {
		t.Errorf("written = %d, want 0", n)
	}
}
