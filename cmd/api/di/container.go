package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/cmd/api/infrastructure"
	"pmblueprints/internal/adapter/ai"
	"pmblueprints/internal/adapter/cache"
	ginhandler "pmblueprints/internal/adapter/gin/handler"
	"pmblueprints/internal/adapter/gin/router"
	"pmblueprints/internal/adapter/oauth"
	"pmblueprints/internal/adapter/payment"
	"pmblueprints/internal/adapter/platform"
	"pmblueprints/internal/adapter/repository/cached"
	"pmblueprints/internal/adapter/repository/postgres"
	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/config"
	"pmblueprints/internal/docgen"
	"pmblueprints/internal/usecase/account"
	"pmblueprints/internal/usecase/aigen"
	"pmblueprints/internal/usecase/auth"
	"pmblueprints/internal/usecase/billing"
	"pmblueprints/internal/usecase/catalog"
	"pmblueprints/internal/usecase/download"
	"pmblueprints/internal/usecase/integration"
	redisclient "pmblueprints/pkg/redis"
	"pmblueprints/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Storage     storage.Service
	Tokens      *security.TokenManager
	Handlers    router.Handlers
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	store, err := infrastructure.NewStorage(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	tokens, err := security.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		cfg.Logger.ServiceName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// Caches
	cacheTTL := time.Duration(cfg.Redis.CacheTTL) * time.Second
	templateCache := cache.NewRedisTemplateCache(rdb.Client, cacheTTL, l)
	oauthStates := cache.NewRedisOAuthStateStore(rdb.Client, 10*time.Minute, l)

	// Repositories
	userRepo := postgres.NewUserRepoPG(db, l)
	templateRepo := postgres.NewTemplateRepoPG(db, l)
	activityRepo := postgres.NewActivityRepoPG(db, l)
	billingRepo := postgres.NewBillingRepoPG(db, l)
	aigenRepo := postgres.NewAIGenRepoPG(db, l)
	connectionRepo := postgres.NewConnectionRepoPG(db, l)

	cachedTemplates := cached.NewCachedTemplateRepository(templateRepo, templateCache, l)

	// External gateways
	stripeGateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, l)
	aiClient := ai.NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		time.Duration(cfg.OpenAI.Timeout)*time.Second,
		l,
	)
	oauthRegistry := oauth.NewRegistry(cfg.OAuth)
	exporters := platform.NewRegistry(
		platform.NewMondayExporter("", l),
		platform.NewSmartsheetExporter("", l),
		platform.NewGoogleExporter("", l),
		platform.NewMicrosoftExporter("", l),
		platform.NewWorkdayExporter(cfg.OAuth.WorkdayTenant, l),
	)

	presignTTL := time.Duration(cfg.Storage.PresignTTL) * time.Second
	resetTokenTTL := time.Duration(cfg.Auth.ResetTokenTTLHours) * time.Hour
	renderer := docgen.NewOfficeRenderer()

	// Use cases
	catalogUC := catalog.New(cachedTemplates, activityRepo, templateCache, l)
	authUC := auth.New(userRepo, tokens, resetTokenTTL, l)
	downloadUC := download.New(userRepo, templateRepo, activityRepo, billingRepo, store, presignTTL, l)
	billingUC := billing.New(stripeGateway, userRepo, billingRepo, templateRepo, l)
	aigenUC := aigen.New(userRepo, aigenRepo, aiClient, renderer, store, presignTTL, l)
	integrationUC := integration.New(connectionRepo, templateRepo, oauthRegistry, exporters, oauthStates, l)
	accountUC := account.New(userRepo, activityRepo, templateRepo, l)

	handlers := router.Handlers{
		Auth:        ginhandler.NewAuthHandler(authUC, oauthRegistry, oauthStates, l),
		Catalog:     ginhandler.NewCatalogHandler(catalogUC, l),
		Download:    ginhandler.NewDownloadHandler(downloadUC, l),
		Billing:     ginhandler.NewBillingHandler(billingUC, l),
		AIGen:       ginhandler.NewAIGenHandler(aigenUC, l),
		Integration: ginhandler.NewIntegrationHandler(integrationUC, l),
		Account:     ginhandler.NewAccountHandler(accountUC, l),
	}

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Storage:     store,
		Tokens:      tokens,
		Handlers:    handlers,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
