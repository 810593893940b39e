package router

import (
	"log"
	"net/http"
	"time"

	"milestofund/config"
	"milestofund/internal/handler"
	"milestofund/internal/middleware"
	"milestofund/internal/repository"
	"milestofund/internal/service"
	"milestofund/pkg/gateway"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	updateRepo := repository.NewUpdateRepository(db)

	// Gateway provider: real keys select Razorpay, otherwise the mock.
	var provider gateway.Provider
	if cfg.Razorpay.Configured() {
		provider = gateway.NewRazorpayProvider(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Timeout)
	} else {
		log.Printf("[payment] RAZORPAY_KEY_ID not set, payments run in mock mode")
		provider = gateway.MockProvider{}
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	milestoneSvc := service.NewMilestoneService(db)
	contributionSvc := service.NewContributionService(db, milestoneSvc, cfg.Platform.MinContribution)
	aiSvc := service.NewAIService(&cfg.Gemini)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, contributionRepo, commentRepo, updateRepo, userRepo)
	paymentHandler := handler.NewPaymentHandler(cfg, provider, projectRepo, contributionRepo, contributionSvc)
	userHandler := handler.NewUserHandler(userRepo, projectRepo, contributionRepo)
	aiHandler := handler.NewAIHandler(aiSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optionalMw := middleware.OptionalAuth(&cfg.JWT)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"message":  "MilestoFund API",
				"env":      cfg.Server.Env,
				"razorpay": cfg.Razorpay.Configured(),
				"gemini":   cfg.Gemini.APIKey != "",
			})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMw, authHandler.GetMe)
			authGroup.PUT("/profile", authMw, authHandler.UpdateProfile)
			authGroup.PUT("/change-password", authMw, authHandler.ChangePassword)
		}

		projects := api.Group("/projects")
		{
			// static routes before /:id
			projects.GET("", optionalMw, projectHandler.List)
			projects.GET("/featured", projectHandler.Featured)
			projects.GET("/recommendations", authMw, projectHandler.Recommendations)

			projects.GET("/:id", optionalMw, projectHandler.GetByID)
			projects.POST("", authMw, projectHandler.Create)
			projects.PUT("/:id", authMw, projectHandler.Update)
			projects.DELETE("/:id", authMw, projectHandler.Delete)

			projects.POST("/:id/comments", authMw, projectHandler.AddComment)
			projects.DELETE("/:id/comments/:cid", authMw, projectHandler.DeleteComment)
			projects.POST("/:id/updates", authMw, projectHandler.PostUpdate)
			projects.POST("/:id/impact-report", authMw, projectHandler.PublishImpactReport)
			projects.POST("/:id/save", authMw, projectHandler.ToggleSave)
			projects.GET("/:id/contributors", projectHandler.Contributors)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/create-order", paymentHandler.CreateOrder)
			payments.POST("/verify", paymentHandler.VerifyPayment)
			payments.GET("/contribution/:paymentId", paymentHandler.GetContribution)
			payments.GET("/my-contributions", paymentHandler.GetMyContributions)
		}

		users := api.Group("/users")
		{
			users.GET("/dashboard", authMw, userHandler.GetDashboard)
			users.GET("/saved", authMw, userHandler.GetSaved)
			users.GET("/:id/profile", userHandler.GetProfile)
		}

		api.POST("/ai/generate", authMw, aiHandler.Generate)
	}

	return r
}
