package config

import "time"

// Config is the root configuration for a sync run.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Quotes     QuotesConfig     `yaml:"quotes"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Securities SecuritiesConfig `yaml:"securities"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// StoreConfig selects the finance store.
type StoreConfig struct {
	Driver   string   `yaml:"driver"`    // sqlite or postgres
	DataDir  string   `yaml:"data_dir"`  // Banktivity document directory (sqlite)
	FileName string   `yaml:"file_name"` // Store file inside DataDir (sqlite)
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// QuotesConfig holds quote service settings.
type QuotesConfig struct {
	URLTemplate string        `yaml:"url_template"` // Must contain {symbol}
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
}

// DownloaderConfig holds orchestrator settings.
type DownloaderConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	ChunkSize       int           `yaml:"chunk_size"`
	TransferTimeout time.Duration `yaml:"transfer_timeout"`
}

// SecuritiesConfig holds enumeration bounds.
type SecuritiesConfig struct {
	MaxIDLength     int `yaml:"max_id_length"`
	MaxSymbolLength int `yaml:"max_symbol_length"`
}

// MetricsConfig holds Pushgateway settings. An empty PushURL disables pushing.
type MetricsConfig struct {
	PushURL string `yaml:"push_url"`
	Job     string `yaml:"job"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}
