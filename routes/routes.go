package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civic-india/api-go/controllers"
	"github.com/civic-india/api-go/middleware"
	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	photos, err := services.NewPhotoStore()
	if err != nil {
		log.Fatal("Failed to initialize photo storage:", err)
	}

	ledger := services.NewLedger(db)

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	reportController := controllers.NewReportController(db, ledger, services.NewGeminiClassifier(), photos)
	pointsController := controllers.NewPointsController(db, ledger)
	couponController := controllers.NewCouponController(db, ledger)
	contractorController := controllers.NewContractorController(db, ledger)
	adminController := controllers.NewAdminController(db)

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ok",
				"message":   "Backend server is running",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"version":   "1.0.0",
			})
		})
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/auth/forgot-password", authController.ForgotPassword)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)

		SetupReportRoutes(protected, db, reportController)
		SetupPointsRoutes(protected, pointsController)
		SetupCouponRoutes(protected, couponController)
		SetupContractorRoutes(protected, db, contractorController)
		SetupAdminRoutes(protected, db, adminController)
	}
}

// anyActiveRole gates a route to any signed-in, active account.
func anyActiveRole(db *gorm.DB) gin.HandlerFunc {
	return middleware.RequireRole(db,
		models.RoleUser, models.RoleContractor, models.RoleAdmin, models.RoleSuperAdmin)
}
