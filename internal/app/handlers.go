package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/mealcycle-backend/internal/http"
	httpH "github.com/yungbote/mealcycle-backend/internal/http/handlers"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Meal   *httpH.MealHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Meal:   httpH.NewMealHandler(log, services.Meals),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) apphttp.RouterConfig {
	rc := apphttp.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		MealHandler:   handlers.Meal,
		HealthHandler: handlers.Health,
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return rc
}

func ginMode(logMode string) string {
	switch logMode {
	case "production", "prod":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
