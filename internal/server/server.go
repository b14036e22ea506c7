package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huportal/events-api/config"
	"github.com/huportal/events-api/internal/handlers"
	"github.com/huportal/events-api/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB) {
	r.Use(middleware.DatabaseMiddleware(db))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		public.POST("/submissions", handlers.SubmitPublicEvent)

		eventPublic := public.Group("/events")
		eventPublic.Use(middleware.OptionalJWTMiddleware())
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/me", handlers.GetProfile)
		protected.GET("/me/events", handlers.ListMyEvents)
		protected.GET("/me/registrations", handlers.ListMyRegistrations)

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)
			eventProtected.POST("/:id/registrations", handlers.RegisterForEvent)
			eventProtected.GET("/:id/registrations", handlers.ListEventRegistrations)
		}

		registrations := protected.Group("/registrations")
		{
			registrations.GET("/:id/qr", handlers.GenerateRegistrationQR)
			registrations.POST("/validate", handlers.ValidateRegistration)
		}
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminRequired())
	{
		admin.GET("/events/pending", handlers.ListPendingEvents)
		admin.PATCH("/events/:id/status", handlers.UpdateEventStatus)
	}
}
