package routes

import (
	"github.com/civic-india/api-go/controllers"
	"github.com/civic-india/api-go/middleware"
	"github.com/civic-india/api-go/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, adminController *controllers.AdminController) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireRole(db, models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.GET("/contractors", adminController.ListContractors)
		admin.POST("/contractors", adminController.CreateContractor)
		admin.PUT("/contractors", adminController.UpdateContractor)
		admin.DELETE("/contractors", adminController.DeleteContractor)
		admin.GET("/analytics", adminController.GetAnalytics)
	}
}
