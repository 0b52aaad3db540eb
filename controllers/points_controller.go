package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
	"github.com/civic-india/api-go/utils"
	"gorm.io/gorm"
)

const pointsHistoryLimit = 20

type PointsController struct {
	DB     *gorm.DB
	Ledger *services.Ledger
}

func NewPointsController(db *gorm.DB, ledger *services.Ledger) *PointsController {
	return &PointsController{DB: db, Ledger: ledger}
}

// GetPoints godoc
// @Summary Get the requesting user's point balance and recent history
// @Tags points
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /points [get]
func (pc *PointsController) GetPoints(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var user models.User
	if err := pc.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Balances are derived from the ledger, not read off the cached columns,
	// so this endpoint doubles as a reconciliation read.
	total, available, err := pc.Ledger.Balance(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	history, err := pc.Ledger.History(user.ID, pointsHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":              user.ID,
			"name":            user.Name,
			"email":           user.Email,
			"totalPoints":     total,
			"availablePoints": available,
		},
		"history": history,
	})
}

// RedeemPoints godoc
// @Summary Redeem points against the ledger
// @Tags points
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /points [post]
func (pc *PointsController) RedeemPoints(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		Amount      int    `json:"amount" binding:"required,gt=0"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := pc.Ledger.Debit(claims.UserID, input.Amount, input.Description)
	if err != nil {
		var insufficient *services.InsufficientPointsError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Insufficient points",
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
			return
		}
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, available, err := pc.Ledger.Balance(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Successfully redeemed %d points for %s", input.Amount, input.Description),
		"transaction": entry,
		"newBalance":  available,
	})
}
