package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "alexmatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// OpenAlexConfig holds settings for the OpenAlex REST provider.
type OpenAlexConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// APIKey is sent as the api_key parameter when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// PerPage bounds the candidate page returned by an author search (default 25).
	PerPage int `json:"per_page" yaml:"per_page" mapstructure:"per_page"`

	// MaxRetries is the number of attempts for a GET that fails with 429,
	// 5xx or a network error (default 3). 1 disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// CacheDir enables the on-disk response cache when non-empty.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty" mapstructure:"cache_dir"`

	// CacheTTL is the lifetime of cached responses (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// MatchConfig holds settings for the resolution engine and selector.
type MatchConfig struct {
	// Threshold is the minimum token-set score accepted (default 90).
	Threshold int `json:"threshold" yaml:"threshold" mapstructure:"threshold"`

	// Workers is the number of investigators resolved concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// AliasesFile is an optional YAML map of institution aliases merged over
	// the built-in table.
	AliasesFile string `json:"aliases_file,omitempty" yaml:"aliases_file,omitempty" mapstructure:"aliases_file"`
}

// StoreDriver selects the record store backend.
type StoreDriver string

const (
	DriverSQLite   StoreDriver = "sqlite"
	DriverPostgres StoreDriver = "postgres"
	DriverBigQuery StoreDriver = "bigquery"
)

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Path is the SQLite database file (default "alexmatch.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// DSN is the Postgres connection string.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`

	// Project, Dataset and Table locate the BigQuery investigators table.
	Project string `json:"project,omitempty" yaml:"project,omitempty" mapstructure:"project"`
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty" mapstructure:"dataset"`
	Table   string `json:"table,omitempty" yaml:"table,omitempty" mapstructure:"table"`
}

// BridgeSource selects where DOI, authorship and author lookups come from.
type BridgeSource string

const (
	BridgeOpenAlex BridgeSource = "openalex"
	BridgeBigQuery BridgeSource = "bigquery"
)

// BridgeConfig holds settings for the authorship bridge used by the ratify pass.
type BridgeConfig struct {
	Source BridgeSource `json:"source" yaml:"source" mapstructure:"source"`

	// Project and Dataset locate an OpenAlex snapshot in BigQuery
	// (tables works, works_authorships, authors,
	// authors_display_name_alternatives).
	Project string `json:"project,omitempty" yaml:"project,omitempty" mapstructure:"project"`
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty" mapstructure:"dataset"`
}

// MetricsConfig holds settings for the Prometheus textfile export.
type MetricsConfig struct {
	// File is written at the end of a run when non-empty.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// LogConfig selects the logger mode ("development" or "production").
type LogConfig struct {
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// Config groups all stage configurations.
type Config struct {
	OpenAlex OpenAlexConfig `json:"openalex" yaml:"openalex" mapstructure:"openalex"`
	Match    MatchConfig    `json:"match" yaml:"match" mapstructure:"match"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Bridge   BridgeConfig   `json:"bridge" yaml:"bridge" mapstructure:"bridge"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		OpenAlex: OpenAlexConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "alexmatch/0.1",
			},
			PerPage:    25,
			MaxRetries: 3,
			CacheTTL:   24 * time.Hour,
		},
		Match: MatchConfig{
			Threshold: 90,
			Workers:   1,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "alexmatch.db",
		},
		Bridge: BridgeConfig{
			Source: BridgeOpenAlex,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}
