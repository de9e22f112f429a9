package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Query   QueryConfig   `yaml:"query" mapstructure:"query"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Breaker BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
	Tagging TaggingConfig `yaml:"tagging" mapstructure:"tagging"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RatePerSec  float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// QueryConfig configures phrase matching and execution.
type QueryConfig struct {
	DefaultLimit   int    `yaml:"default_limit" mapstructure:"default_limit"`
	ParallelFanout bool   `yaml:"parallel_fanout" mapstructure:"parallel_fanout"`
	CustomPatterns string `yaml:"custom_patterns" mapstructure:"custom_patterns"`
}

// ImportConfig configures spreadsheet imports.
type ImportConfig struct {
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"`
	HeaderRow int    `yaml:"header_row" mapstructure:"header_row"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// BreakerConfig configures the record store circuit breaker.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	RetryAttempts    int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// TaggingConfig overrides the built-in tag vocabulary when Keywords is set.
type TaggingConfig struct {
	Keywords map[string][]string `yaml:"keywords" mapstructure:"keywords"`
}

// Load reads path, or config.yaml from the working directory when path is
// empty, then FINDINGS_* environment variables. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("FINDINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "findings.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_sec", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("query.default_limit", 50)
	v.SetDefault("query.parallel_fanout", false)
	v.SetDefault("query.custom_patterns", "")
	v.SetDefault("import.sheet_name", "")
	v.SetDefault("import.header_row", 1)
	v.SetDefault("import.batch_size", 500)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout_secs", 30)
	v.SetDefault("breaker.retry_attempts", 3)

	// Read config file (optional unless named)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "query", "import", "migrate" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
		if c.Store.MinConns > c.Store.MaxConns {
			errs = append(errs, "store.min_conns must not exceed store.max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}

	switch mode {
	case "query":
		if c.Query.DefaultLimit <= 0 {
			errs = append(errs, "query.default_limit must be > 0")
		}
	case "import":
		if c.Import.HeaderRow < 0 {
			errs = append(errs, "import.header_row must be >= 0")
		}
	case "migrate":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RatePerSec < 0 {
			errs = append(errs, "server.rate_per_sec must be >= 0")
		}
		if c.Query.DefaultLimit <= 0 {
			errs = append(errs, "query.default_limit must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
