package config

import "time"

// Default values for optional configuration fields.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultDriver          = DriverSQLite
	DefaultFileName        = "accountsData.ibank"
	DefaultURLTemplate     = "https://query1.finance.yahoo.com/v7/finance/download/{symbol}?interval=1d&events=history"
	DefaultQuotesTimeout   = 30 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultConcurrency     = 4
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultChunkSize       = 4096
	DefaultTransferTimeout = 30 * time.Second
	DefaultMaxIDLength     = 36
	DefaultMaxSymbolLength = 5
	DefaultMetricsJob      = "quotesync"
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultDriver
	}
	if c.Store.FileName == "" {
		c.Store.FileName = DefaultFileName
	}
	applyDBDefaults(&c.Store.Postgres)

	// Quotes defaults
	if c.Quotes.URLTemplate == "" {
		c.Quotes.URLTemplate = DefaultURLTemplate
	}
	if c.Quotes.Timeout == 0 {
		c.Quotes.Timeout = DefaultQuotesTimeout
	}

	// Downloader defaults
	if c.Downloader.Concurrency == 0 {
		c.Downloader.Concurrency = DefaultConcurrency
	}
	if c.Downloader.PollInterval == 0 {
		c.Downloader.PollInterval = DefaultPollInterval
	}
	if c.Downloader.ChunkSize == 0 {
		c.Downloader.ChunkSize = DefaultChunkSize
	}
	if c.Downloader.TransferTimeout == 0 {
		c.Downloader.TransferTimeout = DefaultTransferTimeout
	}

	// Securities defaults
	if c.Securities.MaxIDLength == 0 {
		c.Securities.MaxIDLength = DefaultMaxIDLength
	}
	if c.Securities.MaxSymbolLength == 0 {
		c.Securities.MaxSymbolLength = DefaultMaxSymbolLength
	}

	// Metrics defaults
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
