package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/civic-india/api-go/config"
	"github.com/civic-india/api-go/middleware"
	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/services"
)

const testPassword = "password123"

var errTest = errors.New("classifier unavailable")

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

// stubClassifier stands in for the vision service in tests.
type stubClassifier struct {
	result *services.Classification
	err    error
}

func (s *stubClassifier) Classify(context.Context, []byte, string) (*services.Classification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(t *testing.T, db *gorm.DB, classifier services.Classifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	photos, err := services.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ledger := services.NewLedger(db)
	authController := NewAuthController(db)
	reportController := NewReportController(db, ledger, classifier, photos)
	pointsController := NewPointsController(db, ledger)
	couponController := NewCouponController(db, ledger)
	contractorController := NewContractorController(db, ledger)
	adminController := NewAdminController(db)

	r := gin.New()

	public := r.Group("/api")
	public.POST("/register", authController.Register)
	public.POST("/login", authController.Login)

	anyRole := middleware.RequireRole(db,
		models.RoleUser, models.RoleContractor, models.RoleAdmin, models.RoleSuperAdmin)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.POST("/logout", authController.Logout)
	protected.GET("/profile", authController.GetProfile)
	protected.POST("/report", anyRole, reportController.SubmitReport)
	protected.GET("/report", reportController.ListReports)
	protected.GET("/reports/mine", reportController.MyReports)
	protected.GET("/points", pointsController.GetPoints)
	protected.POST("/points", pointsController.RedeemPoints)
	protected.GET("/coupons", couponController.ListCoupons)
	protected.POST("/coupons", couponController.RedeemCoupon)
	protected.PATCH("/coupons", couponController.MarkUsed)

	contractor := protected.Group("/contractor")
	contractor.Use(middleware.RequireRole(db, models.RoleContractor))
	contractor.GET("/jobs", contractorController.GetJobs)
	contractor.POST("/jobs/accept", contractorController.AcceptJob)
	contractor.POST("/jobs/complete", contractorController.CompleteJob)
	contractor.GET("/profile", contractorController.GetProfile)
	contractor.PUT("/profile", contractorController.UpdateProfile)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(db, models.RoleAdmin, models.RoleSuperAdmin))
	admin.GET("/contractors", adminController.ListContractors)
	admin.POST("/contractors", adminController.CreateContractor)
	admin.PUT("/contractors", adminController.UpdateContractor)
	admin.DELETE("/contractors", adminController.DeleteContractor)
	admin.GET("/analytics", adminController.GetAnalytics)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestContractor(t *testing.T, db *gorm.DB, user *models.User, lat, lng *float64) *models.Contractor {
	t.Helper()
	contractor := models.Contractor{
		UserID:      &user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       "9876543210",
		Latitude:    lat,
		Longitude:   lng,
		Status:      "active",
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&contractor).Error)
	return &contractor
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := generateToken(user.ID, user.Email)
	require.NoError(t, err)
	return token
}

func httpDo(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func floatPtr(f float64) *float64 { return &f }
