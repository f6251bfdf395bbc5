package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/api/handlers"
	"github.com/princeprakhar/reviewflow-backend/internal/api/middleware"
	"github.com/princeprakhar/reviewflow-backend/internal/config"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the routes need beyond the database.
// Archiver may be nil when report export is not configured.
type Dependencies struct {
	Notifier services.Notifier
	Archiver services.ReportArchiver
}

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, deps Dependencies) error {
	if err := utils.RegisterValidators(); err != nil {
		return err
	}

	// Middleware
	router.Use(middleware.RequestLogger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		utils.SendInternalError(c, "Internal server error")
		c.Abort()
	}))
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS, time.Second))

	// Initialize services
	tokens := utils.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	authService := services.NewAuthService(db, tokens)
	templateService := services.NewTemplateService(db)
	automationService := services.NewAutomationService(db)
	reviewService := services.NewReviewService(db, templateService, automationService, deps.Notifier)
	campaignService := services.NewCampaignService(db, deps.Notifier)
	analyticsService := services.NewAnalyticsService(db, deps.Archiver)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	automationHandler := handlers.NewAutomationHandler(automationService, templateService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
	})

	router.NoRoute(func(c *gin.Context) {
		utils.SendNotFound(c, "Route not found")
	})

	api := router.Group("/api")
	requireAuth := middleware.AuthMiddleware(cfg.JWTSecret)

	// Auth routes (public)
	auth := api.Group("/auth", middleware.RateLimitMiddleware(cfg.AuthRateLimitRPM, time.Minute))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	user := api.Group("/user", requireAuth)
	{
		user.GET("/profile", userHandler.GetProfile)
		user.PUT("/profile", userHandler.UpdateProfile)
		user.PUT("/change-password", userHandler.ChangePassword)
		user.PUT("/subscription", userHandler.UpdateSubscription)
	}

	reviews := api.Group("/reviews", requireAuth)
	{
		reviews.GET("", reviewHandler.ListReviews)
		reviews.POST("", reviewHandler.CreateReview)
		reviews.GET("/:id", reviewHandler.GetReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
		reviews.POST("/:id/respond", reviewHandler.Respond)
		reviews.POST("/:id/auto-respond", reviewHandler.AutoRespond)
		reviews.PATCH("/:id/status", reviewHandler.UpdateStatus)
	}

	campaigns := api.Group("/campaigns", requireAuth)
	{
		campaigns.GET("", campaignHandler.ListCampaigns)
		campaigns.POST("", campaignHandler.CreateCampaign)
		campaigns.GET("/:id", campaignHandler.GetCampaign)
		campaigns.PUT("/:id", campaignHandler.UpdateCampaign)
		campaigns.DELETE("/:id", campaignHandler.DeleteCampaign)
		campaigns.PATCH("/:id/status", campaignHandler.UpdateStatus)
		campaigns.POST("/:id/recipients", campaignHandler.AddRecipients)
		campaigns.POST("/:id/send", campaignHandler.SendCampaign)
		campaigns.POST("/:id/recipients/:recipient_id/convert", campaignHandler.RecordConversion)
	}

	automation := api.Group("/automation", requireAuth)
	{
		automation.GET("/settings", automationHandler.GetSettings)
		automation.PUT("/settings", automationHandler.UpdateSettings)
		automation.GET("/templates", automationHandler.ListTemplates)
		automation.POST("/templates", automationHandler.CreateTemplate)
		automation.PUT("/templates/:id", automationHandler.UpdateTemplate)
		automation.DELETE("/templates/:id", automationHandler.DeleteTemplate)
	}

	analytics := api.Group("/analytics", requireAuth)
	{
		analytics.GET("/dashboard", analyticsHandler.Dashboard)
		analytics.GET("/trends", analyticsHandler.Trends)
		analytics.GET("/rating-distribution", analyticsHandler.RatingDistribution)
		analytics.GET("/campaign-performance", analyticsHandler.CampaignPerformance)
		analytics.GET("/monthly-report", analyticsHandler.MonthlyReport)
		analytics.POST("/monthly-report/export", analyticsHandler.ExportMonthlyReport)
	}

	logger.Info("Routes initialized successfully")
	return nil
}
