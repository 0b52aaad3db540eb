package routes

import (
	"github.com/civic-india/api-go/controllers"
	"github.com/civic-india/api-go/middleware"
	"github.com/civic-india/api-go/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupContractorRoutes(rg *gin.RouterGroup, db *gorm.DB, contractorController *controllers.ContractorController) {
	contractor := rg.Group("/contractor")
	contractor.Use(middleware.RequireRole(db, models.RoleContractor))
	{
		contractor.GET("/jobs", contractorController.GetJobs)
		contractor.POST("/jobs/accept", contractorController.AcceptJob)
		contractor.POST("/jobs/complete", contractorController.CompleteJob)
		contractor.GET("/profile", contractorController.GetProfile)
		contractor.PUT("/profile", contractorController.UpdateProfile)
	}
}
