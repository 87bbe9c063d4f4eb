package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string `yaml:"driver"`
	// DSN wins over the discrete postgres fields when set.
	DSN              string        `yaml:"dsn"`
	PostgresHost     string        `yaml:"postgres_host"`
	PostgresPort     string        `yaml:"postgres_port"`
	PostgresUser     string        `yaml:"postgres_user"`
	PostgresPassword string        `yaml:"postgres_password"`
	PostgresName     string        `yaml:"postgres_name"`
	SQLitePath       string        `yaml:"sqlite_path"`
	MaxOpenConns     int           `yaml:"max_open_conns"`
	SlowThreshold    time.Duration `yaml:"slow_threshold"`
}

// Dialector picks the gorm dialect for the configured driver. Everything above
// this point is dialect-agnostic.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres, "postgresql", "":
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s?sslmode=disable",
				cfg.PostgresUser,
				cfg.PostgresPassword,
				cfg.PostgresHost,
				cfg.PostgresPort,
				cfg.PostgresName,
			)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite, "sqlite3":
		path := strings.TrimSpace(cfg.DSN)
		if path == "" {
			path = strings.TrimSpace(cfg.SQLitePath)
		}
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Service owns the storage handle for the lifetime of the process.
type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewService(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "driver", cfg.Driver)

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		serviceLog,
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		// driver errors stay untranslated so the violated constraint can be told apart
		TranslateError:                           false,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialector.Name(), err)
	}

	maxOpen := cfg.MaxOpenConns
	if dialector.Name() == DriverSQLite && maxOpen <= 0 {
		// a single writer keeps sqlite from returning SQLITE_BUSY under concurrent transactions
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("unwrap sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	serviceLog.Info("Database connected", "dialect", dialector.Name())
	return &Service{db: db, driver: dialector.Name(), log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the handle. Failures are logged; there is nothing a caller can do with them at shutdown.
func (s *Service) Close() {
	if s == nil || s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		s.log.Warn("Database close skipped", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		s.log.Warn("Database close failed", "error", err)
		return
	}
	s.log.Info("Database closed")
}
