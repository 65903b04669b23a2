package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/handler"
	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/config"
	"pmblueprints/pkg/logger"
	redisclient "pmblueprints/pkg/redis"
	"pmblueprints/pkg/security"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Catalog     *handler.CatalogHandler
	Download    *handler.DownloadHandler
	Billing     *handler.BillingHandler
	AIGen       *handler.AIGenHandler
	Integration *handler.IntegrationHandler
	Account     *handler.AccountHandler
}

// SetupRouter configures and returns a Gin router with all routes and
// middleware.
func SetupRouter(
	h Handlers,
	tokens *security.TokenManager,
	redisClient *redisclient.Client,
	cfg config.RateLimitConfig,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(logger.Recovery(log))
	router.Use(logger.Middleware(log))
	router.Use(middleware.RateLimiter(redisClient.Client, cfg, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pmblueprints-api",
		})
	})

	// Swagger UI and spec
	router.GET("/swagger/pmblueprints.swagger.json", func(c *gin.Context) {
		c.File("./api/swagger/pmblueprints.swagger.json")
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/pmblueprints.swagger.json"),
	)))

	requireAuth := middleware.RequireAuth(tokens, log)
	optionalAuth := middleware.OptionalAuth(tokens, log)
	paymentLimiter := middleware.PaymentRateLimiter(redisClient.Client, cfg, log)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/oauth/:provider", h.Auth.OAuthStart)
			auth.POST("/oauth/callback", h.Auth.OAuthCallback)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
			auth.POST("/change-password", requireAuth, h.Auth.ChangePassword)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("", h.Catalog.ListTemplates)
			templates.GET("/facets", h.Catalog.Facets)
			templates.GET("/:id", optionalAuth, h.Catalog.GetTemplate)
			templates.POST("/:id/download", requireAuth, h.Download.Download)
			templates.POST("/:id/rating", requireAuth, h.Catalog.RateTemplate)
			templates.POST("/:id/favorite", requireAuth, h.Catalog.AddFavorite)
			templates.DELETE("/:id/favorite", requireAuth, h.Catalog.RemoveFavorite)
		}

		v1.GET("/favorites", requireAuth, h.Catalog.ListFavorites)
		v1.GET("/downloads", requireAuth, h.Download.History)

		billing := v1.Group("/billing")
		{
			billing.GET("/plans", h.Billing.ListPlans)
			billing.POST("/subscribe", requireAuth, paymentLimiter, h.Billing.Subscribe)
			billing.POST("/purchase", requireAuth, paymentLimiter, h.Billing.PurchaseTemplate)
			billing.POST("/confirm", requireAuth, paymentLimiter, h.Billing.Confirm)
			billing.POST("/cancel", requireAuth, h.Billing.Cancel)
			billing.POST("/webhook", h.Billing.Webhook)
			billing.GET("/history", requireAuth, h.Billing.History)
		}

		ai := v1.Group("/ai", requireAuth)
		{
			ai.POST("/generate", h.AIGen.Generate)
			ai.POST("/suggestions", h.AIGen.Suggest)
			ai.GET("/history", h.AIGen.History)
			ai.GET("/generations/:id/download", h.AIGen.DownloadGeneration)
		}

		integrations := v1.Group("/integrations", requireAuth)
		{
			integrations.GET("", h.Integration.Status)
			integrations.POST("/callback", h.Integration.Callback)
			integrations.POST("/:platform/connect", h.Integration.Connect)
			integrations.POST("/:platform/export", h.Integration.Export)
			integrations.POST("/:platform/test", h.Integration.Test)
			integrations.DELETE("/:platform", h.Integration.Disconnect)
		}

		account := v1.Group("/account", requireAuth)
		{
			account.GET("/profile", h.Account.Profile)
			account.PUT("/profile", h.Account.UpdateProfile)
			account.PUT("/openai-key", h.Account.SetOpenAIKey)
			account.GET("/dashboard", h.Account.Dashboard)
		}
	}

	return router
}
