package routes

import (
	"github.com/civic-india/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupCouponRoutes(rg *gin.RouterGroup, couponController *controllers.CouponController) {
	rg.GET("/coupons", couponController.ListCoupons)
	rg.POST("/coupons", couponController.RedeemCoupon)
	rg.PATCH("/coupons", couponController.MarkUsed)
}
