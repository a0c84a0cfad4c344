package commands

import (
	"context"
	"fmt"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/forecast"
	"github.com/wonny/salescast/internal/model"
	"github.com/wonny/salescast/internal/policy"
	"github.com/wonny/salescast/internal/store"
	"github.com/wonny/salescast/internal/training"
	"github.com/wonny/salescast/pkg/config"
	"github.com/wonny/salescast/pkg/database"
	"github.com/wonny/salescast/pkg/httputil"
	"github.com/wonny/salescast/pkg/logger"
	"github.com/wonny/salescast/pkg/metrics"
	"github.com/wonny/salescast/pkg/redis"
)

// cachePrefix Redis 키 접두사
const cachePrefix = "salescast"

// app 모든 커맨드가 공유하는 의존성 그래프
// ⭐ SSOT: 컴포넌트 조립은 newApp 에서만
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	metrics *metrics.Metrics
	policy  *policy.Policy

	sales    *store.SalesRepository
	registry *model.Registry
	trainer  *training.Trainer
	service  *forecast.Service
}

// newApp loads config and wires every component
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	zlog := log.Zerolog()

	// 3. Forecast policy
	pol, err := policy.LoadOrDefault(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	// 5. Redis (optional)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Disabled()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.Default()
	}

	// 6. Stores
	sales := store.NewSalesRepository(db.Pool)
	var source contracts.EnrichmentDataSource = store.NopSource{}
	if cfg.EnrichmentEnabled {
		source = store.NewEnrichmentSource(db.Pool, cfg.EnrichmentTimeout, zlog)
	}
	enricher := features.NewEnricher(source, m, zlog)

	// 7. Model gateway
	artifacts := model.NewArtifactStore(cfg.Model.Dir)
	var loader model.Loader = model.NewArtifactLoader(artifacts)
	if cfg.Model.Backend == "remote" {
		client := httputil.NewWithTimeout(log, cfg.Model.RemoteTimeout).
			WithRateLimit(cfg.Model.RemoteRPS, 1)
		loader = model.NewRemoteLoader(client, cfg.Model.RemoteURL)
	}
	registry := model.NewRegistry(loader, m, zlog)

	// 8. Trainer + forecast service
	trainer := training.NewTrainer(training.Config{
		Store:    sales,
		Enricher: enricher,
		Artifact: artifacts,
		Registry: registry,
		Policy:   pol,
		Cache:    redis.NewCache(rc, cachePrefix),
		Metrics:  m,
		Backend:  cfg.Model.Backend,
		Location: cfg.Location(),
	}, zlog)

	service := forecast.NewService(forecast.Deps{
		Registry: registry,
		Store:    sales,
		Enricher: enricher,
		Policy:   pol,
		Metrics:  m,
		Location: cfg.Location(),
	}, zlog)

	log.WithFields(map[string]interface{}{
		"env":        cfg.Env,
		"tz":         cfg.AppTZ,
		"backend":    cfg.Model.Backend,
		"model_dir":  cfg.Model.Dir,
		"enrichment": cfg.EnrichmentEnabled,
		"redis":      rc.Enabled(),
	}).Debug("Application wired")

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    rc,
		metrics:  m,
		policy:   pol,
		sales:    sales,
		registry: registry,
		trainer:  trainer,
		service:  service,
	}, nil
}

// close releases connections
func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
