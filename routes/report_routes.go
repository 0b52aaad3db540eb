package routes

import (
	"github.com/civic-india/api-go/controllers"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupReportRoutes(rg *gin.RouterGroup, db *gorm.DB, reportController *controllers.ReportController) {
	rg.POST("/report", anyActiveRole(db), reportController.SubmitReport)
	rg.GET("/report", reportController.ListReports)
	rg.GET("/reports/mine", reportController.MyReports)
}
