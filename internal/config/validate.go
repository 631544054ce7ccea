package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if strings.ContainsRune(c.Store.FileName, '/') {
			return fmt.Errorf("store.file_name must be a bare file name, got %q", c.Store.FileName)
		}
	case DriverPostgres:
		if err := c.Store.Postgres.validate("store.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Store.Driver)
	}

	if !strings.Contains(c.Quotes.URLTemplate, "{symbol}") {
		return errors.New("quotes.url_template must contain {symbol}")
	}
	if c.Quotes.Timeout < 0 {
		return errors.New("quotes.timeout must be >= 0")
	}

	if c.Downloader.Concurrency < 1 {
		return errors.New("downloader.concurrency must be >= 1")
	}
	if c.Downloader.PollInterval <= 0 {
		return errors.New("downloader.poll_interval must be > 0")
	}
	if c.Downloader.ChunkSize < 1 {
		return errors.New("downloader.chunk_size must be >= 1")
	}
	if c.Downloader.TransferTimeout <= 0 {
		return errors.New("downloader.transfer_timeout must be > 0")
	}

	if c.Securities.MaxIDLength < 1 || c.Securities.MaxIDLength > DefaultMaxIDLength {
		return fmt.Errorf("securities.max_id_length must be between 1 and %d, got %d", DefaultMaxIDLength, c.Securities.MaxIDLength)
	}
	if c.Securities.MaxSymbolLength < 4 || c.Securities.MaxSymbolLength > DefaultMaxSymbolLength {
		return fmt.Errorf("securities.max_symbol_length must be between 4 and %d, got %d", DefaultMaxSymbolLength, c.Securities.MaxSymbolLength)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
