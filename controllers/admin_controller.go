package controllers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civic-india/api-go/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// defaultContractorPassword seeds the login account provisioned alongside a
// new contractor; the contractor is expected to change it on first login.
const defaultContractorPassword = "123456"

type AdminController struct {
	DB *gorm.DB
}

type CreateContractorRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Phone       string   `json:"phone" binding:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Status      string   `json:"status" binding:"omitempty,oneof=active inactive suspended"`
	IsAvailable *bool    `json:"isAvailable"`
}

type UpdateContractorRequest struct {
	ID          uint     `json:"id" binding:"required"`
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Status      *string  `json:"status"`
	IsAvailable *bool    `json:"isAvailable"`
	Rating      *float64 `json:"rating"`
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// ListContractors godoc
// @Summary List contractors with optional status/availability filters
// @Tags admin
// @Produce json
// @Param status query string false "Filter by contractor status"
// @Param isAvailable query boolean false "Filter by availability"
// @Success 200 {object} map[string]interface{}
// @Router /admin/contractors [get]
func (ac *AdminController) ListContractors(c *gin.Context) {
	db := ac.DB.Model(&models.Contractor{})

	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if isAvailable := c.Query("isAvailable"); isAvailable != "" {
		db = db.Where("is_available = ?", isAvailable == "true")
	}

	var contractors []models.Contractor
	if err := db.Order("created_at DESC").Find(&contractors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var stats struct {
		Total     int64 `json:"total"`
		Active    int64 `json:"active"`
		Available int64 `json:"available"`
		Suspended int64 `json:"suspended"`
	}
	ac.DB.Model(&models.Contractor{}).Count(&stats.Total)
	ac.DB.Model(&models.Contractor{}).Where("status = ?", "active").Count(&stats.Active)
	ac.DB.Model(&models.Contractor{}).Where("is_available = ?", true).Count(&stats.Available)
	ac.DB.Model(&models.Contractor{}).Where("status = ?", "suspended").Count(&stats.Suspended)

	c.JSON(http.StatusOK, gin.H{
		"contractors": contractors,
		"stats":       stats,
		"message":     "Contractors retrieved successfully",
	})
}

// CreateContractor godoc
// @Summary Create a contractor and its linked login account
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /admin/contractors [post]
func (ac *AdminController) CreateContractor(c *gin.Context) {
	var req CreateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(req.Email)

	var existing models.Contractor
	if err := ac.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Contractor with this email already exists"})
		return
	}
	var existingUser models.User
	if err := ac.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultContractorPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := req.Status
	if status == "" {
		status = "active"
	}
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	var contractor models.Contractor
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Name:     req.Name,
			Email:    email,
			Password: string(hashedPassword),
			Role:     models.RoleContractor,
			IsActive: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		contractor = models.Contractor{
			UserID:      &user.ID,
			Name:        req.Name,
			Email:       email,
			Phone:       req.Phone,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Status:      status,
			IsAvailable: isAvailable,
		}
		return tx.Create(&contractor).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Contractor with this email already exists"})
			return
		}
		log.Printf("contractor creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"contractor": contractor,
		"message":    "Contractor created successfully with default password: " + defaultContractorPassword,
	})
}

// UpdateContractor godoc
// @Summary Update a contractor's details
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/contractors [put]
func (ac *AdminController) UpdateContractor(c *gin.Context) {
	var req UpdateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contractor models.Contractor
	if err := ac.DB.First(&contractor, req.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		if email != contractor.Email {
			var duplicate models.Contractor
			if err := ac.DB.Where("email = ?", email).First(&duplicate).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Contractor with this email already exists"})
				return
			}
			updates["email"] = email
		}
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	if len(updates) > 0 {
		if err := ac.DB.Model(&contractor).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "Contractor with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contractor": contractor,
		"message":    "Contractor updated successfully",
	})
}

// DeleteContractor godoc
// @Summary Delete a contractor
// @Tags admin
// @Produce json
// @Param id query integer true "Contractor ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/contractors [delete]
func (ac *AdminController) DeleteContractor(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor ID is required"})
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor ID is required"})
		return
	}

	var contractor models.Contractor
	if err := ac.DB.First(&contractor, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return
	}

	if err := ac.DB.Delete(&contractor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contractor deleted successfully"})
}

// GetAnalytics godoc
// @Summary Aggregate report and user statistics for the admin dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/analytics [get]
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	var totalReports int64
	ac.DB.Model(&models.Report{}).Count(&totalReports)

	var statusCounts []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	ac.DB.Model(&models.Report{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts)

	var issueTypeCounts []struct {
		IssueType string `json:"issueType"`
		Count     int64  `json:"count"`
	}
	ac.DB.Model(&models.Report{}).
		Select("issue_type as issue_type, COUNT(*) as count").
		Group("issue_type").
		Scan(&issueTypeCounts)

	var avgTimeToFix float64
	ac.DB.Model(&models.Report{}).
		Select("COALESCE(AVG(avg_time_to_fix), 0)").
		Scan(&avgTimeToFix)

	// Severity buckets: low < 4, moderate < 7, high < 9, critical >= 9.
	var severityDistribution struct {
		Low      int64 `json:"low"`
		Moderate int64 `json:"moderate"`
		High     int64 `json:"high"`
		Critical int64 `json:"critical"`
	}
	ac.DB.Model(&models.Report{}).Where("severity < 4").Count(&severityDistribution.Low)
	ac.DB.Model(&models.Report{}).Where("severity >= 4 AND severity < 7").Count(&severityDistribution.Moderate)
	ac.DB.Model(&models.Report{}).Where("severity >= 7 AND severity < 9").Count(&severityDistribution.High)
	ac.DB.Model(&models.Report{}).Where("severity >= 9").Count(&severityDistribution.Critical)

	var recentReports []models.Report
	ac.DB.Preload("User").Order("created_at DESC").Limit(20).Find(&recentReports)

	var topContributors []struct {
		UserID      uint   `json:"userId"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		ReportCount int64  `json:"reportCount"`
	}
	ac.DB.Table("reports").
		Select("reports.user_id, users.name, users.email, COUNT(reports.id) as report_count").
		Joins("JOIN users ON users.id = reports.user_id").
		Where("reports.deleted_at IS NULL").
		Group("reports.user_id, users.name, users.email").
		Order("report_count DESC").
		Limit(5).
		Scan(&topContributors)

	sixMonthsAgo := time.Now().AddDate(0, -5, 0)
	monthExpr := "to_char(created_at, 'YYYY-MM')"
	if ac.DB.Dialector.Name() == "sqlite" {
		monthExpr = "strftime('%Y-%m', created_at)"
	}
	var monthlyTrend []struct {
		Month string `json:"month"`
		Count int64  `json:"count"`
	}
	ac.DB.Model(&models.Report{}).
		Select(monthExpr + " as month, COUNT(*) as count").
		Where("created_at >= ?", sixMonthsAgo).
		Group("month").
		Order("month").
		Scan(&monthlyTrend)

	c.JSON(http.StatusOK, gin.H{
		"totalReports":         totalReports,
		"statusCounts":         statusCounts,
		"issueTypeCounts":      issueTypeCounts,
		"avgTimeToFix":         avgTimeToFix,
		"severityDistribution": severityDistribution,
		"recentReports":        recentReports,
		"topContributors":      topContributors,
		"monthlyTrend":         monthlyTrend,
	})
}
