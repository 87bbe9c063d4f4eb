package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mealcycle-backend/internal/clients/redis"
	"github.com/yungbote/mealcycle-backend/internal/data/db"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/envutil"
)

const defaultConfigPath = "config/config.yaml"

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Namespace string        `yaml:"namespace"`
	Interval  time.Duration `yaml:"interval"`
}

type Config struct {
	LogMode string                   `yaml:"log_mode"`
	HTTP    HTTPConfig               `yaml:"http"`
	DB      db.Config                `yaml:"db"`
	Redis   redis.Config             `yaml:"redis"`
	Metrics MetricsConfig            `yaml:"metrics"`
	Otel    observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		DB: db.Config{
			Driver:        db.DriverPostgres,
			PostgresHost:  "localhost",
			PostgresPort:  "5432",
			PostgresUser:  "postgres",
			PostgresName:  "mealcycle",
			SlowThreshold: 200 * time.Millisecond,
		},
		Redis: redis.Config{
			KeyPrefix: "mealcycle",
			TTL:       5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "mealcycle",
			Interval:  15 * time.Second,
		},
		Otel: observability.OtelConfig{
			ServiceName: "mealcycle-backend",
			Environment: "development",
			SampleRatio: 1,
		},
	}
}

// LoadConfig layers defaults, the optional YAML file, then environment overrides.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	path := envutil.String("MEALS_CONFIG_PATH", defaultConfigPath)
	if err := mergeConfigFile(&cfg, path); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeConfigFile decodes path over cfg. A missing file is not an error.
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envutil.String("DB_DSN", cfg.DB.DSN)
	cfg.DB.PostgresHost = envutil.String("POSTGRES_HOST", cfg.DB.PostgresHost)
	cfg.DB.PostgresPort = envutil.String("POSTGRES_PORT", cfg.DB.PostgresPort)
	cfg.DB.PostgresUser = envutil.String("POSTGRES_USER", cfg.DB.PostgresUser)
	cfg.DB.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.DB.PostgresPassword)
	cfg.DB.PostgresName = envutil.String("POSTGRES_NAME", cfg.DB.PostgresName)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)
	cfg.DB.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = envutil.Duration("COUNTS_CACHE_TTL", cfg.Redis.TTL)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
	if raw := envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""); raw != "" {
		cfg.Otel.Headers = observability.ParseHeaders(raw)
	}
}

func (c Config) validate() error {
	if _, err := db.Dialector(c.DB); err != nil {
		return fmt.Errorf("invalid db config: %w", err)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http addr must not be empty")
	}
	return nil
}
