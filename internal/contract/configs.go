package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/donorlens/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 2
	DefaultAddr      = ":8080"
)

// ThresholdsRawInput holds tier threshold overrides from the YAML config file.
type ThresholdsRawInput struct {
	Major *float64 `mapstructure:"major"`
	Mid   *float64 `mapstructure:"mid"`
}

// WindowsRawInput holds window overrides from the YAML config file.
type WindowsRawInput struct {
	LapsedDays *int `mapstructure:"lapsed_days"`
	RecentDays *int `mapstructure:"recent_days"`
	AckDays    *int `mapstructure:"ack_days"`
}

// Config holds the runtime configuration for a report.
// This struct is the "final, validated" config.
type Config struct {
	schema.Settings

	InputPath  string
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Verbose    bool
	MaskNames  bool
	UseColors  bool
	Addr       string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	AsOf             string  `mapstructure:"as-of"`
	LapsedDays       int     `mapstructure:"lapsed-days"`
	RecentDays       int     `mapstructure:"recent-days"`
	MajorThreshold   float64 `mapstructure:"major-threshold"`
	MidThreshold     float64 `mapstructure:"mid-threshold"`
	AckDays          int     `mapstructure:"ack-days"`
	TopN             int     `mapstructure:"top-n"`
	QueueSize        int     `mapstructure:"queue-size"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Precision        int     `mapstructure:"precision"`
	Width            int     `mapstructure:"width"`
	Verbose          bool    `mapstructure:"verbose"`
	MaskNames        bool    `mapstructure:"mask-names"`
	Color            string  `mapstructure:"color"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Overrides from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
	Windows    WindowsRawInput    `mapstructure:"windows"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithAsOf creates a copy of the Config anchored at a different as-of date.
func (c *Config) CloneWithAsOf(asOf time.Time) *Config {
	clone := c.Clone()
	clone.AsOf = schema.CivilDate(asOf)
	return clone
}

// DefaultRawInput returns the raw input every source starts from.
func DefaultRawInput() ConfigRawInput {
	return ConfigRawInput{
		LapsedDays:     schema.DefaultLapsedDays,
		RecentDays:     schema.DefaultRecentDays,
		MajorThreshold: schema.DefaultMajorThreshold,
		MidThreshold:   schema.DefaultMidThreshold,
		AckDays:        schema.DefaultAckDays,
		TopN:           schema.DefaultTopN,
		QueueSize:      schema.DefaultQueueSize,
		Output:         string(schema.TextOut),
		Precision:      DefaultPrecision,
		Color:          "yes",
		CacheBackend:   string(schema.NoneBackend),
		HistoryBackend: string(schema.NoneBackend),
		Addr:           DefaultAddr,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. now anchors the default as-of date.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSettings(cfg, input, now); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.MaskNames = input.MaskNames
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	return nil
}

// processSettings resolves the as-of date and merges flag and config file values
// into the calculator settings. The thresholds and windows sections win over flags.
func processSettings(cfg *Config, input *ConfigRawInput, now time.Time) error {
	asOf, err := ParseAsOf(input.AsOf, now)
	if err != nil {
		return err
	}

	s := schema.Settings{
		AsOf:           asOf,
		LapsedDays:     input.LapsedDays,
		RecentDays:     input.RecentDays,
		MajorThreshold: input.MajorThreshold,
		MidThreshold:   input.MidThreshold,
		AckDays:        input.AckDays,
		TopN:           input.TopN,
		QueueSize:      input.QueueSize,
	}

	if input.Thresholds.Major != nil {
		s.MajorThreshold = *input.Thresholds.Major
	}
	if input.Thresholds.Mid != nil {
		s.MidThreshold = *input.Thresholds.Mid
	}
	if input.Windows.LapsedDays != nil {
		s.LapsedDays = *input.Windows.LapsedDays
	}
	if input.Windows.RecentDays != nil {
		s.RecentDays = *input.Windows.RecentDays
	}
	if input.Windows.AckDays != nil {
		s.AckDays = *input.Windows.AckDays
	}

	if err := s.Validate(); err != nil {
		return err
	}
	cfg.Settings = s
	return nil
}

// ConfigParams flattens the config into the map stored with each history run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"input":           c.InputPath,
		"as_of":           schema.FormatDate(c.AsOf),
		"lapsed_days":     c.LapsedDays,
		"recent_days":     c.RecentDays,
		"major_threshold": c.MajorThreshold,
		"mid_threshold":   c.MidThreshold,
		"ack_days":        c.AckDays,
		"top_n":           c.TopN,
		"queue_size":      c.QueueSize,
	}
}
