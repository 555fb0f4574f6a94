package container

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshua-takyi/spk/internal/campus"
	"github.com/joshua-takyi/spk/internal/config"
	"github.com/joshua-takyi/spk/internal/connect"
	"github.com/joshua-takyi/spk/internal/engine"
	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/metrics"
	"github.com/joshua-takyi/spk/internal/middleware"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/scheduler"
	"github.com/joshua-takyi/spk/internal/services"
)

const orgRefreshTimeout = 2 * time.Minute

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Clients *connect.Clients

	Campus         *campus.Client
	TokenValidator *helpers.TokenValidator
	RateLimiter    *middleware.RateLimiter
	Scheduler      *scheduler.Scheduler

	EventService        *services.EventService
	OrganizationService *services.OrganizationService
	SessionService      *services.SessionService
	PreferenceService   *services.PreferenceService
	AuthService         *services.AuthService
}

// NewContainer creates a new dependency injection container. Backends
// missing from clients are replaced by in-memory adapters.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, clients *connect.Clients) *Container {
	if clients == nil {
		clients = &connect.Clients{}
	}
	m := metrics.New(prometheus.NewRegistry())
	campusClient := campus.NewClient(cfg.Campus(), m, logger)

	var thumbnail func(string) string
	if clients.Cloudinary != nil {
		cld := clients.Cloudinary
		thumbnail = func(src string) string { return helpers.ThumbnailURL(cld, src) }
	}

	// Initialize repositories
	var (
		mappingRepo models.MappingRepo
		authRepo    models.AuthRepo
	)
	if clients.Supabase != nil {
		supa := models.SupabaseNewRepo(clients.Supabase)
		mappingRepo, authRepo = supa, supa
	}

	var sessionStore models.SessionStore = models.NewMemorySessionStore()
	if clients.Redis != nil {
		sessionStore = models.RedisNewRepo(clients.Redis)
	} else {
		logger.Warn("REDIS_URL not set, onboarding saves are kept in memory")
	}

	var prefsRepo models.PreferenceRepo = models.NewMemoryPreferenceRepo()
	if clients.MongoDB != nil {
		mongoRepo := models.MongodbNewRepo(clients.MongoDB)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure preference indexes", "error", err)
		}
		prefsRepo = mongoRepo
	} else {
		logger.Warn("MONGODB_URI not set, preferences are kept in memory")
	}

	en := engine.NewEngine(cfg.EventsTimezone, cfg.EventsPageSize)
	normalizer := engine.NewNormalizer(cfg.EventsTimezone, cfg.EventsImageBaseURL)
	eventService := services.NewEventService(campusClient, normalizer, en, thumbnail, cfg.EventsTake, m, logger)
	orgService := services.NewOrganizationService(campusClient, mappingRepo, cfg.OrgMappingPath, thumbnail, m, logger)

	var sched *scheduler.Scheduler
	if cfg.OrgRefreshSpec != "" {
		sched = scheduler.New(orgService, cfg.OrgRefreshSpec, orgRefreshTimeout, logger)
	}

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Metrics:             m,
		Clients:             clients,
		Campus:              campusClient,
		TokenValidator:      helpers.NewTokenValidator(cfg.SupabaseURL),
		RateLimiter:         middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Scheduler:           sched,
		EventService:        eventService,
		OrganizationService: orgService,
		SessionService:      services.NewSessionService(sessionStore, services.DefaultSessionTTL, logger),
		PreferenceService:   services.NewPreferenceService(prefsRepo),
		AuthService:         services.NewAuthService(authRepo),
	}
}

// Close stops background work and disconnects the backends.
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	c.TokenValidator.Close()
	return c.Clients.Close()
}
