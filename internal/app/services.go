package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/data/repos"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
	"github.com/yungbote/mealcycle-backend/internal/services"
)

type Services struct {
	Ledger aggregates.MealLedger
	Cycles services.CycleResolver
	Meals  services.MealService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet repos.Set, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	ledger := aggregates.NewMealLedger(aggregates.MealLedgerDeps{
		BaseDeps: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Meals:    reposet.Meals,
		Counters: reposet.Counters,
		Aliases:  reposet.Aliases,
	})
	cycles := services.NewCycleResolver(log, reposet.Meals)

	var cache services.ReadCache
	if clients.ReadCache != nil {
		cache = clients.ReadCache
	}

	return Services{
		Ledger: ledger,
		Cycles: cycles,
		Meals: services.NewMealService(services.MealServiceDeps{
			DB:     db,
			Log:    log,
			Ledger: ledger,
			Repos:  reposet,
			Cycles: cycles,
			Cache:  cache,
		}),
	}
}
