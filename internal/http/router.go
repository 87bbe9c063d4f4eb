package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mealcycle-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mealcycle-backend/internal/http/middleware"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	// ServiceName enables otelgin spans when set.
	ServiceName string

	MealHandler   *httpH.MealHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if err := httpH.RegisterValidators(); err != nil && cfg.Log != nil {
		cfg.Log.Error("register request validators", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Meals
		if cfg.MealHandler != nil {
			api.POST("/meals", cfg.MealHandler.StoreMeal)
			api.GET("/meals/single", cfg.MealHandler.GetMeal)
			api.DELETE("/meals/single", cfg.MealHandler.DeleteMeal)
			api.GET("/meals/week", cfg.MealHandler.GetWeek)
			api.GET("/meals/counts", cfg.MealHandler.GetMealCounts)
			api.GET("/meals/names", cfg.MealHandler.GetMealNames)
			api.GET("/meals/occurrences/:mealId", cfg.MealHandler.GetOccurrences)

			// Replacements
			api.POST("/meals/replacement", cfg.MealHandler.InsertReplacement)
			api.GET("/meals/replacement", cfg.MealHandler.ListReplacements)
		}
	}

	return r
}
