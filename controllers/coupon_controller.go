package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
	"github.com/civic-india/api-go/types"
	"github.com/civic-india/api-go/utils"
	"gorm.io/gorm"
)

const (
	couponValidity      = 90 * 24 * time.Hour
	couponCodeAttempts  = 5
	couponCodeRandomLen = 10
	couponCodeCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type CouponController struct {
	DB     *gorm.DB
	Ledger *services.Ledger
}

func NewCouponController(db *gorm.DB, ledger *services.Ledger) *CouponController {
	return &CouponController{DB: db, Ledger: ledger}
}

// generateCouponCode combines a brand-derived prefix with random alphanumeric
// characters. Uniqueness is enforced at redemption time, not here.
func generateCouponCode(brand string) (string, error) {
	prefix := strings.ToUpper(brand)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	suffix := make([]byte, couponCodeRandomLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(couponCodeCharset))))
		if err != nil {
			return "", err
		}
		suffix[i] = couponCodeCharset[n.Int64()]
	}

	return prefix + string(suffix), nil
}

// ListCoupons godoc
// @Summary Get the user's coupons, the rewards catalog and the available balance
// @Tags coupons
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /coupons [get]
func (cc *CouponController) ListCoupons(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var coupons []models.Coupon
	if err := cc.DB.Where("user_id = ?", claims.UserID).
		Order("redeemed_at DESC").
		Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, available, err := cc.Ledger.Balance(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons":          coupons,
		"availableOptions": types.GetCouponOptions(),
		"availablePoints":  available,
	})
}

// RedeemCoupon godoc
// @Summary Exchange points for a coupon from the fixed catalog
// @Tags coupons
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /coupons [post]
func (cc *CouponController) RedeemCoupon(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		Brand      string `json:"brand" binding:"required"`
		PointsCost int    `json:"pointsCost" binding:"required,gt=0"`
		Value      int    `json:"value" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	option, ok := types.FindCouponOption(input.Brand, input.PointsCost, input.Value)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon option"})
		return
	}

	var coupon models.Coupon
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		// Debit first: it locks the user row and verifies the ledger-derived
		// balance, so a failed coupon insert rolls the whole redemption back.
		if _, err := cc.Ledger.DebitTx(tx, claims.UserID, option.PointsCost,
			fmt.Sprintf("Redeemed %s coupon worth ₹%d", option.Name, option.Value)); err != nil {
			return err
		}

		// Code collisions are unlikely but real; retry a bounded number of
		// times and fail loudly rather than loop forever.
		for attempt := 0; attempt < couponCodeAttempts; attempt++ {
			code, err := generateCouponCode(option.Brand)
			if err != nil {
				return err
			}

			coupon = models.Coupon{
				UserID:     claims.UserID,
				Brand:      option.Brand,
				CouponCode: code,
				Value:      option.Value,
				PointsCost: option.PointsCost,
				Status:     models.CouponStatusActive,
				ExpiresAt:  time.Now().Add(couponValidity),
			}

			err = tx.Create(&coupon).Error
			if err == nil {
				return nil
			}
			if !isUniqueViolation(err) {
				return err
			}
			coupon = models.Coupon{}
		}

		return fmt.Errorf("failed to generate a unique coupon code after %d attempts", couponCodeAttempts)
	})
	if err != nil {
		var insufficient *services.InsufficientPointsError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Insufficient points",
				"available": insufficient.Available,
				"required":  insufficient.Requested,
			})
			return
		}
		log.Printf("coupon redemption failed for user %d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, available, err := cc.Ledger.Balance(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Successfully redeemed %d points for %s coupon!", option.PointsCost, option.Name),
		"coupon":     coupon,
		"newBalance": available,
	})
}

// MarkUsed godoc
// @Summary Mark one of the user's coupons as used
// @Tags coupons
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /coupons [patch]
func (cc *CouponController) MarkUsed(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		CouponID uint `json:"couponId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var coupon models.Coupon
	if err := cc.DB.Where("id = ? AND user_id = ?", input.CouponID, claims.UserID).
		First(&coupon).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	if coupon.Status == models.CouponStatusUsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon already used"})
		return
	}

	now := time.Now()
	coupon.Status = models.CouponStatusUsed
	coupon.UsedAt = &now
	if err := cc.DB.Model(&coupon).Updates(map[string]interface{}{
		"status":  coupon.Status,
		"used_at": coupon.UsedAt,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Coupon marked as used",
		"coupon":  coupon,
	})
}
