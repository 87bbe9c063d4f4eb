package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mealcycle-backend/internal/data/db"
	"github.com/yungbote/mealcycle-backend/internal/data/repos"
	apphttp "github.com/yungbote/mealcycle-backend/internal/http"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Repos    repos.Set
	Services Services
	Metrics  *observability.Metrics
	Server   *apphttp.Server

	clients      Clients
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration from the environment and wires the application.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	gin.SetMode(ginMode(cfg.LogMode))

	store, err := db.NewService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.Bootstrap(store.DB()); err != nil {
		store.Close()
		return nil, fmt.Errorf("db bootstrap: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.New(cfg.Metrics.Namespace)
	}
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	clients := wireClients(ctx, log, cfg, metrics)
	reposet := wireRepos(store.DB(), log)
	serviceset := wireServices(store.DB(), log, reposet, clients, metrics)
	handlerset := wireHandlers(log, serviceset, store)
	server := apphttp.NewServer(routerConfig(log, cfg, handlerset, metrics), cfg.HTTP.ShutdownTimeout)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           store,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors. Calling it twice is a no-op.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB.DB(), a.Cfg.Metrics.Interval)
		if a.clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.clients.Redis, a.Cfg.Metrics.Interval)
		}
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	return a.Server.Run(ctx, a.Cfg.HTTP.Addr)
}

// Close releases every resource New acquired. Errors are logged, not returned.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		cancel()
	}
	a.clients.Close(a.Log)
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
