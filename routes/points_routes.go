package routes

import (
	"github.com/civic-india/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupPointsRoutes(rg *gin.RouterGroup, pointsController *controllers.PointsController) {
	rg.GET("/points", pointsController.GetPoints)
	rg.POST("/points", pointsController.RedeemPoints)
}
