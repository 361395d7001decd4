package api

import (
	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/config"
	"infinite-experiment/hangar/internal/db/repositories"
	"infinite-experiment/hangar/internal/metrics"
	"infinite-experiment/hangar/internal/providers"
	"infinite-experiment/hangar/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Notifications  *repositories.NotificationRepository
	Subscriptions  *repositories.SubscriptionRepository
	Directives     *repositories.DirectiveRepository
	History        *repositories.DirectiveHistoryRepository
	Compliance     *repositories.ComplianceRepository
	MaintenanceLog *repositories.MaintenanceLogRepository
	Aircraft       *repositories.AircraftRepository
}

type Services struct {
	Cache          common.CacheInterface
	Counters       *providers.CachedCounterProvider
	Notifications  *services.NotificationService
	Compliance     *services.DirectiveComplianceService
	Directives     *services.DirectiveService
	MaintenanceLog *services.MaintenanceLogService
	Alerts         *services.AlertService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services onto the open database
// handles. cache backs the counter snapshot cache.
func InitDependencies(
	cfg *config.Config,
	gormDB *gorm.DB,
	sqlxDB *sqlx.DB,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := compliance.SystemClock{Location: loc}

	repos := &Repositories{
		Notifications:  repositories.NewNotificationRepository(gormDB),
		Subscriptions:  repositories.NewSubscriptionRepository(gormDB),
		Directives:     repositories.NewDirectiveRepository(gormDB),
		History:        repositories.NewDirectiveHistoryRepository(gormDB),
		Compliance:     repositories.NewComplianceRepository(gormDB, common.NewKeyedMutex()),
		MaintenanceLog: repositories.NewMaintenanceLogRepository(gormDB),
		Aircraft:       repositories.NewAircraftRepository(gormDB),
	}

	counters := providers.NewCachedCounterProvider(
		providers.NewSQLCounterProvider(sqlxDB), cache, cfg.CounterTTL, metricsReg)

	complianceSvc := services.NewDirectiveComplianceService(
		repos.Directives, repos.History, repos.Compliance, repos.Notifications, clock, metricsReg,
	).WithAlertDefaults(cfg.AlertDays, cfg.AlertHours)

	svcs := &Services{
		Cache:    cache,
		Counters: counters,
		Notifications: services.NewNotificationService(
			repos.Notifications, repos.Subscriptions, clock, metricsReg,
		).WithAlertDefaults(cfg.AlertDays, cfg.AlertHours),
		Compliance: complianceSvc,
		Directives: services.NewDirectiveService(
			repos.Directives, repos.History, repos.Compliance, repos.Notifications, counters, clock, metricsReg,
		).WithAlertDefaults(cfg.AlertDays, cfg.AlertHours),
		MaintenanceLog: services.NewMaintenanceLogService(
			repos.MaintenanceLog, repos.Notifications, repos.Aircraft, counters, repos.Compliance, complianceSvc, metricsReg,
		).WithAlertDefaults(cfg.AlertDays, cfg.AlertHours),
		Alerts: services.NewAlertService(
			repos.Notifications, repos.Aircraft, counters,
			compliance.NewEvaluator(cfg.AlertDays, cfg.AlertHours), clock, metricsReg,
		),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}
