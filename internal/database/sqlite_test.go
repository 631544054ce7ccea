package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rickgao/quotesync/internal/config"
	"github.com/rickgao/quotesync/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	store, err := CreateSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("CreateSQLite failed: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestDataFile(t *testing.T) {
	got := DataFile("/Users/test/Finances.bank8", "accountsData.ibank")
	want := "/Users/test/Finances.bank8/accountsData.ibank"
	if got != want {
		t.Errorf("DataFile() = %q, want %q", got, want)
	}
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "missing.ibank"))
		if !errors.Is(err, ErrNoDataFile) {
			t.Errorf("expected ErrNoDataFile, got %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := OpenSQLite(ctx, t.TempDir())
		if err == nil {
			t.Error("expected error for directory")
		}
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accountsData.ibank")
		created, err := CreateSQLite(ctx, path)
		if err != nil {
			t.Fatalf("CreateSQLite failed: %v", err)
		}
		created.Close()

		store, err := OpenSQLite(ctx, path)
		if err != nil {
			t.Fatalf("OpenSQLite failed: %v", err)
		}
		defer store.Close()

		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestCreateSQLite_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountsData.ibank")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateSQLite(context.Background(), path); err == nil {
		t.Error("expected error for existing file")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	created, err := CreateSQLite(ctx, DataFile(dir, config.DefaultFileName))
	if err != nil {
		t.Fatalf("CreateSQLite failed: %v", err)
	}
	created.Close()

	cfg := config.Default().Store

	t.Run("data dir argument", func(t *testing.T) {
		store, err := Open(ctx, cfg, dir)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		store.Close()
	})

	t.Run("data dir from config", func(t *testing.T) {
		c := cfg
		c.DataDir = dir
		store, err := Open(ctx, c, "")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		store.Close()
	})

	t.Run("no data dir", func(t *testing.T) {
		if _, err := Open(ctx, cfg, ""); err == nil {
			t.Error("expected error without data dir")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := cfg
		c.Driver = "mysql"
		if _, err := Open(ctx, c, dir); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
}

func TestSQLiteStore_Securities(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.DB().ExecContext(ctx, `
		INSERT INTO zsecurity (zuniqueid, zsymbol) VALUES
			('id-msft', 'MSFT'),
			('id-aapl', 'AAPL'),
			(NULL, 'ORPH'),
			('id-cash', NULL),
			('id-vtsax', 'VTSAX')`)
	if err != nil {
		t.Fatalf("insert securities: %v", err)
	}

	got, err := store.Securities(ctx)
	if err != nil {
		t.Fatalf("Securities failed: %v", err)
	}

	want := []model.Security{
		{ID: "id-aapl", Symbol: "AAPL"},
		{ID: "id-msft", Symbol: "MSFT"},
		{ID: "id-vtsax", Symbol: "VTSAX"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d securities, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("securities[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSQLiteTx_Savepoint(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	insert := func(e Execer, id string) error {
		_, err := e.Exec(ctx, "INSERT INTO zsecurity (zuniqueid, zsymbol) VALUES ($1, $2)", id, "SYM")
		return err
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if err := tx.Savepoint(ctx, func(e Execer) error { return insert(e, "kept") }); err != nil {
		t.Fatalf("Savepoint failed: %v", err)
	}

	boom := errors.New("boom")
	err = tx.Savepoint(ctx, func(e Execer) error {
		if err := insert(e, "discarded"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback after commit should be a no-op, got %v", err)
	}

	var ids []string
	rows, err := store.DB().QueryContext(ctx, "SELECT zuniqueid FROM zsecurity ORDER BY zuniqueid")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 1 || ids[0] != "kept" {
		t.Errorf("ids = %v, want [kept]", ids)
	}
}

func TestSQLiteTx_Exec(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.Exec(ctx, "UPDATE z_primarykey SET z_max = $1 WHERE z_name = $2", 7, "Price")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	n, err = tx.Exec(ctx, "UPDATE z_primarykey SET z_max = $1 WHERE z_name = $2", 7, "Nope")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected = %d, want 0", n)
	}
}
