package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// SQLiteSchema creates the subset of the Banktivity tables that a sync reads
// and writes.
const SQLiteSchema = `
CREATE TABLE zsecurity (
	z_pk INTEGER PRIMARY KEY,
	z_ent INTEGER,
	z_opt INTEGER,
	zuniqueid VARCHAR,
	zsymbol VARCHAR,
	zname VARCHAR
);
CREATE TABLE zprice (
	z_pk INTEGER PRIMARY KEY AUTOINCREMENT,
	z_ent INTEGER,
	z_opt INTEGER,
	zdate TIMESTAMP,
	zsecurityid VARCHAR,
	zvolume INTEGER,
	zclosingprice DECIMAL,
	zhighprice DECIMAL,
	zlowprice DECIMAL,
	zopeningprice DECIMAL
);
CREATE UNIQUE INDEX zprice_key ON zprice (z_ent, z_opt, zdate, zsecurityid);
CREATE TABLE z_primarykey (
	z_ent INTEGER PRIMARY KEY,
	z_name VARCHAR,
	z_super INTEGER,
	z_max INTEGER
);
INSERT INTO z_primarykey (z_ent, z_name, z_super, z_max) VALUES (42, 'Price', 0, 0);
`

// CreateSQLite creates a new store file at path with SQLiteSchema. It fails
// if the file already exists.
func CreateSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s: file exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat store file: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}
