package controllers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
	"github.com/civic-india/api-go/types"
	"github.com/civic-india/api-go/utils"
	"gorm.io/gorm"
)

// maxJobDistanceKm bounds the contractor job feed to a 50 km service radius.
const maxJobDistanceKm = 50.0

type ContractorController struct {
	DB     *gorm.DB
	Ledger *services.Ledger
}

type JobsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=all pending in_progress resolved"`
}

func NewContractorController(db *gorm.DB, ledger *services.Ledger) *ContractorController {
	return &ContractorController{DB: db, Ledger: ledger}
}

// calculateDistance returns the great-circle distance in kilometers between
// two latitude/longitude pairs (haversine, Earth radius 6371 km).
func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371

	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*
			math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// contractorForRequest resolves the contractor profile linked to the
// requesting account. The role middleware has already verified the role.
func (cc *ContractorController) contractorForRequest(c *gin.Context) (*models.User, *models.Contractor, bool) {
	account := utils.GetAccount(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
		return nil, nil, false
	}

	var contractor models.Contractor
	if err := cc.DB.Where("user_id = ?", account.ID).First(&contractor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor profile not found"})
		return nil, nil, false
	}

	return account, &contractor, true
}

// GetJobs godoc
// @Summary List reports within the contractor's service radius
// @Description Filters open reports by haversine distance and status, sorted nearest first
// @Tags contractor
// @Produce json
// @Param status query string false "Job status filter: all, pending, in_progress, resolved"
// @Success 200 {object} map[string]interface{}
// @Router /contractor/jobs [get]
func (cc *ContractorController) GetJobs(c *gin.Context) {
	account, contractor, ok := cc.contractorForRequest(c)
	if !ok {
		return
	}

	var query JobsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if contractor.Latitude == nil || contractor.Longitude == nil {
		c.JSON(http.StatusOK, gin.H{
			"jobs":               []models.Report{},
			"contractorLocation": nil,
			"message":            "Location not set. Please update your location in profile.",
		})
		return
	}

	db := cc.DB.Model(&models.Report{})
	switch query.Status {
	case models.ReportStatusPending:
		// Any unassigned pending report city-wide; distance filter applies below.
		db = db.Where("status = ?", models.ReportStatusPending)
	case models.ReportStatusInProgress, models.ReportStatusResolved:
		// Only this contractor's own jobs.
		db = db.Where("status = ? AND assigned_to = ?", query.Status, account.Email)
	}

	var reports []models.Report
	if err := db.Order("created_at DESC").Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching jobs"})
		return
	}

	jobs := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		distance := calculateDistance(*contractor.Latitude, *contractor.Longitude, report.Lat, report.Lng)
		if distance > maxJobDistanceKm {
			continue
		}
		report.Distance = distance
		jobs = append(jobs, report)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Distance < jobs[j].Distance
	})

	c.JSON(http.StatusOK, gin.H{
		"jobs": jobs,
		"contractorLocation": gin.H{
			"latitude":  *contractor.Latitude,
			"longitude": *contractor.Longitude,
		},
		"message": fmt.Sprintf("Found %d jobs within %.0fkm", len(jobs), maxJobDistanceKm),
	})
}

// AcceptJob godoc
// @Summary Accept a pending report as a job
// @Tags contractor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /contractor/jobs/accept [post]
func (cc *ContractorController) AcceptJob(c *gin.Context) {
	account, _, ok := cc.contractorForRequest(c)
	if !ok {
		return
	}

	var input struct {
		JobID uint `json:"jobId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID is required"})
		return
	}

	var job models.Report
	if err := cc.DB.First(&job, input.JobID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	if job.Status != models.ReportStatusPending || job.AssignedTo != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Job is not available"})
		return
	}

	// Guard against two contractors accepting concurrently: the update only
	// lands if the row is still pending and unassigned.
	result := cc.DB.Model(&models.Report{}).
		Where("id = ? AND status = ? AND assigned_to IS NULL", job.ID, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ReportStatusInProgress,
			"assigned_to": account.Email,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Job is not available"})
		return
	}

	cc.DB.First(&job, job.ID)

	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"message": "Job accepted successfully",
	})
}

// CompleteJob godoc
// @Summary Mark an assigned job as resolved and credit the completion reward
// @Tags contractor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /contractor/jobs/complete [post]
func (cc *ContractorController) CompleteJob(c *gin.Context) {
	account, contractor, ok := cc.contractorForRequest(c)
	if !ok {
		return
	}

	var input struct {
		JobID uint `json:"jobId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID is required"})
		return
	}

	var job models.Report
	if err := cc.DB.First(&job, input.JobID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	if job.AssignedTo == nil || *job.AssignedTo != account.Email {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not assigned to this job"})
		return
	}

	if job.Status == models.ReportStatusResolved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job is already completed"})
		return
	}

	reward := types.CalculateCompletionReward(job.IssueType, job.Severity)

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Report{}).
			Where("id = ?", job.ID).
			Update("status", models.ReportStatusResolved).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Contractor{}).
			Where("id = ?", contractor.ID).
			Updates(map[string]interface{}{
				"completed_jobs": gorm.Expr("completed_jobs + ?", 1),
				"total_jobs":     gorm.Expr("total_jobs + ?", 1),
			}).Error; err != nil {
			return err
		}

		_, err := cc.Ledger.CreditTx(tx, account.ID, reward,
			fmt.Sprintf("Completed issue: %s", job.IssueType), &job.ID)
		return err
	})
	if err != nil {
		log.Printf("job completion failed for contractor %d: %v", contractor.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	cc.DB.First(&job, job.ID)

	var totals models.User
	if err := cc.DB.Select("total_points", "available_points").First(&totals, account.ID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":           job,
		"pointsAwarded": reward,
		"totals": gin.H{
			"totalPoints":     totals.TotalPoints,
			"availablePoints": totals.AvailablePoints,
		},
		"message": fmt.Sprintf("Job marked as completed successfully. Earned %d civic points!", reward),
	})
}

// GetProfile returns the contractor's own profile.
func (cc *ContractorController) GetProfile(c *gin.Context) {
	_, contractor, ok := cc.contractorForRequest(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contractor": contractor,
		"message":    "Profile retrieved successfully",
	})
}

// UpdateProfile lets a contractor update their own contact details, dispatch
// location and availability.
func (cc *ContractorController) UpdateProfile(c *gin.Context) {
	_, contractor, ok := cc.contractorForRequest(c)
	if !ok {
		return
	}

	var input struct {
		Phone       *string  `json:"phone"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		IsAvailable *bool    `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}

	if len(updates) > 0 {
		if err := cc.DB.Model(contractor).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contractor": contractor,
		"message":    "Profile updated successfully",
	})
}
