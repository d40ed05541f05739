package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/connectors/reddit"
	"github.com/omerch/updatescout/internal/connectors/vendorpages"
	"github.com/omerch/updatescout/internal/connectors/websearch"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/services/advisor"
	"github.com/omerch/updatescout/internal/services/chat"
	"github.com/omerch/updatescout/internal/services/devices"
	"github.com/omerch/updatescout/internal/services/llm"
	"github.com/omerch/updatescout/internal/services/quota"
	"github.com/omerch/updatescout/internal/services/scheduler"
	badgerstorage "github.com/omerch/updatescout/internal/storage/badger"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	Catalog          *devices.Catalog
	LLMService       interfaces.LLMService
	AdvisorService   *advisor.Service
	QuotaService     *quota.Service
	SchedulerService interfaces.SchedulerService
	ChatService      *chat.Service
}

// New initializes the application with all dependencies in order: storage,
// reference data, external connectors, services, scheduled jobs.
func New(cfg *common.Config, transport interfaces.ChatTransport, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(transport); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initScheduledJobs(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduled jobs: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Bool("llm_enabled", app.LLMService != nil).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initStorage() error {
	manager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")
	return nil
}

func (a *App) initServices(transport interfaces.ChatTransport) error {
	// Device reference data is embedded; a load failure is a build defect.
	catalogData, err := devices.LoadCatalogData()
	if err != nil {
		return fmt.Errorf("failed to load device catalog: %w", err)
	}
	a.Catalog = devices.NewCatalog(catalogData, a.Logger)
	a.Logger.Debug().
		Int("manufacturers", len(catalogData.Manufacturers)).
		Int("devices", len(catalogData.Devices)).
		Msg("Device catalog loaded")

	// LLM is optional. Without it the pipeline falls back to the
	// deterministic keyword summary.
	if a.Config.LLM.Enabled {
		llmService, err := llm.NewService(a.Config, a.StorageManager.KeyValueStorage(), a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to initialize LLM service, recommendations will use fallback analysis")
		} else {
			a.LLMService = llmService
		}
	} else {
		a.Logger.Debug().Msg("LLM disabled by configuration")
	}

	searchClient := websearch.NewClient(&a.Config.Search, a.Logger)

	var socialProvider interfaces.SocialProvider
	redditClient, err := reddit.NewClient(&a.Config.Reddit, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Reddit client unavailable, continuing with web search only")
	} else {
		socialProvider = redditClient
	}

	var bulletins interfaces.BulletinProvider
	if a.Config.Vendor.Enabled {
		bulletins = vendorpages.NewClient(&a.Config.Vendor, a.Logger)
	}

	a.AdvisorService = advisor.NewService(a.Config, advisor.Deps{
		Catalog:         a.Catalog,
		SearchProviders: []interfaces.SearchProvider{searchClient},
		SocialProvider:  socialProvider,
		Bulletins:       bulletins,
		LLM:             a.LLMService,
		AdviceCache:     a.StorageManager.AdviceStorage(),
		KVStorage:       a.StorageManager.KeyValueStorage(),
	}, a.Logger)
	a.Logger.Debug().Msg("Advisor service initialized")

	a.QuotaService = quota.NewService(a.StorageManager.QuotaStorage(), a.Config.Quota.DailyLimit, a.Logger)

	a.ChatService = chat.NewService(a.AdvisorService, a.QuotaService, transport, a.Logger)
	a.Logger.Debug().Msg("Chat service initialized")

	return nil
}

// initScheduledJobs registers and starts the recurring maintenance jobs:
// daily quota reset and the stale advice sweep.
func (a *App) initScheduledJobs() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Debug().Msg("Scheduler disabled by configuration")
		return nil
	}

	a.SchedulerService = scheduler.NewService(a.Logger)

	if err := a.SchedulerService.RegisterJob(
		"quota-reset",
		a.Config.Scheduler.QuotaResetCron,
		"Reset all user quotas at the start of the daily window",
		a.quotaResetJob,
	); err != nil {
		return err
	}

	if err := a.SchedulerService.RegisterJob(
		"advice-cache-sweep",
		a.Config.Scheduler.CacheSweepCron,
		"Delete cached advice older than the staleness window",
		a.cacheSweepJob,
	); err != nil {
		return err
	}

	if a.Config.Vendor.Enabled {
		if err := a.SchedulerService.RegisterJob(
			"bulletin-refresh",
			a.Config.Scheduler.BulletinRefresh,
			"Re-fetch manufacturer security bulletins",
			a.bulletinRefreshJob,
		); err != nil {
			return err
		}
	}

	if err := a.SchedulerService.Start(); err != nil {
		return err
	}
	a.Logger.Debug().Msg("Scheduler service started")
	return nil
}

func (a *App) bulletinRefreshJob() error {
	return a.AdvisorService.RefreshBulletins(context.Background())
}

func (a *App) quotaResetJob() error {
	return a.QuotaService.ResetAll(context.Background())
}

func (a *App) cacheSweepJob() error {
	cutoff := time.Now().UTC().Add(-a.Config.CacheStaleness())
	deleted, err := a.StorageManager.AdviceStorage().DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		a.Logger.Info().Int("deleted", deleted).Msg("Swept stale cached advice")
	}
	return nil
}

// Close releases all application resources in reverse initialization order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
