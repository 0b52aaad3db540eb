package controllers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
	"github.com/civic-india/api-go/types"
	"github.com/civic-india/api-go/utils"
	"gorm.io/gorm"
)

const maxPhotoSize = 10 << 20 // 10 MB

type ReportController struct {
	DB         *gorm.DB
	Ledger     *services.Ledger
	Classifier services.Classifier
	Photos     services.PhotoStore
}

func NewReportController(db *gorm.DB, ledger *services.Ledger, classifier services.Classifier, photos services.PhotoStore) *ReportController {
	return &ReportController{
		DB:         db,
		Ledger:     ledger,
		Classifier: classifier,
		Photos:     photos,
	}
}

// SubmitReport godoc
// @Summary Submit a geotagged civic issue report
// @Description Stores the photo, classifies the issue, persists the report and credits points
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Issue photo"
// @Param lat formData string true "Latitude"
// @Param lng formData string true "Longitude"
// @Param issueType formData string false "Client-side issue category"
// @Param description formData string false "Optional description"
// @Success 200 {object} map[string]interface{}
// @Router /report [post]
func (rc *ReportController) SubmitReport(c *gin.Context) {
	account := utils.GetAccount(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo exceeds size limit"})
		return
	}

	latStr := c.PostForm("lat")
	lngStr := c.PostForm("lng")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
		return
	}
	defer file.Close()

	photoBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	imageURL, err := rc.Photos.Save(c.Request.Context(), fileHeader.Filename, contentType, photoBytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	formIssueType := c.PostForm("issueType")
	description := c.PostForm("description")

	verdict := services.ClassifyWithFallback(c.Request.Context(), rc.Classifier, photoBytes, contentType, formIssueType)
	if verdict.Fallback {
		log.Printf("classifier fallback for user %d: %s", account.ID, verdict.FallbackReason)
	}

	if description == "" {
		description = verdict.Description
	}

	pointsAwarded := types.CalculateReportPoints(verdict.IssueType, verdict.Severity)

	var report models.Report
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		report = models.Report{
			Lat:           lat,
			Lng:           lng,
			ImageURL:      imageURL,
			IssueType:     verdict.IssueType,
			Severity:      verdict.Severity,
			Description:   description,
			Status:        models.ReportStatusPending,
			AvgTimeToFix:  verdict.AvgTimeToFix,
			PointsAwarded: pointsAwarded,
			UserID:        account.ID,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		_, err := rc.Ledger.CreditTx(tx, account.ID, pointsAwarded,
			fmt.Sprintf("Report submitted: %s", verdict.IssueType), &report.ID)
		return err
	})
	if err != nil {
		log.Printf("report submission failed for user %d: %v", account.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"report":        report,
		"pointsAwarded": pointsAwarded,
		"avgTimeToFix":  report.AvgTimeToFix,
		"classifier": gin.H{
			"fallback": verdict.Fallback,
		},
		"message": fmt.Sprintf("Report submitted successfully! You earned %d civic points!", pointsAwarded),
	})
}

// ListReports returns all reports, newest first.
func (rc *ReportController) ListReports(c *gin.Context) {
	var reports []models.Report
	if err := rc.DB.Order("created_at DESC").Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// MyReports returns the requesting user's own reports, newest first.
func (rc *ReportController) MyReports(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var reports []models.Report
	if err := rc.DB.Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
