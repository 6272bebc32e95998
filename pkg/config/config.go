package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "TASKBOARD_"

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
)

func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverMySQL, DriverRedis}
}

type AppConfig struct {
	Environment string          `koanf:"environment"`
	Autosave    bool            `koanf:"autosave"`
	Storage     StorageConfig   `koanf:"storage"`
	HTTP        HTTPConfig      `koanf:"http"`
	Log         LogConfig       `koanf:"log"`
	Telemetry   TelemetryConfig `koanf:"telemetry"`
	RateLimit   RateLimitConfig `koanf:"ratelimit"`
}

type StorageConfig struct {
	Driver        string `koanf:"driver"`
	Key           string `koanf:"key"`
	DataDir       string `koanf:"data_dir"`
	SQLitePath    string `koanf:"sqlite_path"`
	PostgresURL   string `koanf:"postgres_url"`
	MySQLDSN      string `koanf:"mysql_dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

type HTTPConfig struct {
	Port        int           `koanf:"port"`
	CORSOrigins string        `koanf:"cors_origins"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
}

// AllowedOrigins splits the comma separated origin list.
func (c HTTPConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}

type LogConfig struct {
	Level      string `koanf:"level"`
	SQLQueries bool   `koanf:"sql_queries"`
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	ServiceName  string `koanf:"service_name"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	MetricsPort  int    `koanf:"metrics_port"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",
		Autosave:    true,
		Storage: StorageConfig{
			Driver:     DriverFile,
			Key:        "todoApp",
			DataDir:    defaultDataDir(),
			SQLitePath: "taskboard.db",
			RedisAddr:  "localhost:6379",
		},
		HTTP: HTTPConfig{
			Port:        8080,
			CORSOrigins: "*",
			CacheTTL:    2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "taskboard",
			OTLPEndpoint: "localhost:4317",
			MetricsPort:  9091,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskboard")
	}

	return ".taskboard"
}

// Load builds the configuration from defaults, then the YAML file at path (if
// path is set), then TASKBOARD_* environment variables, then overrides. The
// result is validated once, after every layer is applied.
func Load(path string, overrides ...func(*AppConfig)) (*AppConfig, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps TASKBOARD_STORAGE_DATA_DIR to storage.data_dir: the first
// segment names the section, the rest is the field.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}

	return parts[0] + "." + parts[1]
}

func (c *AppConfig) Validate() error {
	var errs []error

	if !slices.Contains(Drivers(), c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage key must not be empty"))
	}

	if c.Storage.Driver == DriverFile && c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage data_dir is required for the file driver"))
	}

	if c.Storage.Driver == DriverPostgres && c.Storage.PostgresURL == "" {
		errs = append(errs, errors.New("storage postgres_url is required for the postgres driver"))
	}

	if c.Storage.Driver == DriverMySQL && c.Storage.MySQLDSN == "" {
		errs = append(errs, errors.New("storage mysql_dsn is required for the mysql driver"))
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.HTTP.Port))
	}

	if c.HTTP.CacheTTL < 0 {
		errs = append(errs, errors.New("http cache_ttl must not be negative"))
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate limit requires positive requests and window"))
	}

	return errors.Join(errs...)
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
