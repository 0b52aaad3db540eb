package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civic-india/api-go/models"
)

func TestCreateContractorProvisionsLinkedAccount(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := httpDo(r, "POST", "/api/admin/contractors", tokenFor(t, admin), gin.H{
		"name":      "Ravi Kumar",
		"email":     "Ravi@Example.com",
		"phone":     "9876543210",
		"latitude":  12.97,
		"longitude": 77.59,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Contractor models.Contractor `json:"contractor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ravi@example.com", resp.Contractor.Email)
	require.NotNil(t, resp.Contractor.UserID)

	// The linked login account exists with the contractor role and the
	// default password.
	var account models.User
	require.NoError(t, db.First(&account, *resp.Contractor.UserID).Error)
	require.Equal(t, models.RoleContractor, account.Role)
	require.True(t, account.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(account.Password), []byte(defaultContractorPassword)))
}

func TestCreateContractorRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	worker := createTestUser(t, db, "worker@example.com", models.RoleContractor)
	createTestContractor(t, db, worker, nil, nil)

	// Duplicate contractor email.
	w := httpDo(r, "POST", "/api/admin/contractors", tokenFor(t, admin), gin.H{
		"name": "Dup", "email": "worker@example.com", "phone": "9876543210",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Email already held by a non-contractor account.
	w = httpDo(r, "POST", "/api/admin/contractors", tokenFor(t, admin), gin.H{
		"name": "Dup", "email": "admin@example.com", "phone": "9876543210",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestListContractorsFiltersAndStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	for i := 0; i < 3; i++ {
		worker := createTestUser(t, db, fmt.Sprintf("worker%d@example.com", i), models.RoleContractor)
		createTestContractor(t, db, worker, nil, nil)
	}
	require.NoError(t, db.Model(&models.Contractor{}).Where("email = ?", "worker2@example.com").
		Updates(map[string]interface{}{"status": "suspended", "is_available": false}).Error)

	w := httpDo(r, "GET", "/api/admin/contractors?status=active", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Contractors []models.Contractor `json:"contractors"`
		Stats       struct {
			Total     int64 `json:"total"`
			Active    int64 `json:"active"`
			Available int64 `json:"available"`
			Suspended int64 `json:"suspended"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Contractors, 2)
	require.EqualValues(t, 3, resp.Stats.Total)
	require.EqualValues(t, 2, resp.Stats.Active)
	require.EqualValues(t, 2, resp.Stats.Available)
	require.EqualValues(t, 1, resp.Stats.Suspended)
}

func TestUpdateContractorPartialUpdates(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	worker := createTestUser(t, db, "worker@example.com", models.RoleContractor)
	contractor := createTestContractor(t, db, worker, nil, nil)

	w := httpDo(r, "PUT", "/api/admin/contractors", tokenFor(t, admin), gin.H{
		"id":     contractor.ID,
		"status": "inactive",
		"rating": 4.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Contractor
	require.NoError(t, db.First(&updated, contractor.ID).Error)
	require.Equal(t, "inactive", updated.Status)
	require.Equal(t, 4.5, updated.Rating)
	// Untouched fields stay put.
	require.Equal(t, "worker@example.com", updated.Email)
	require.Equal(t, "9876543210", updated.Phone)
}

func TestUpdateContractorDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	first := createTestUser(t, db, "first@example.com", models.RoleContractor)
	second := createTestUser(t, db, "second@example.com", models.RoleContractor)
	createTestContractor(t, db, first, nil, nil)
	target := createTestContractor(t, db, second, nil, nil)

	w := httpDo(r, "PUT", "/api/admin/contractors", tokenFor(t, admin), gin.H{
		"id":    target.ID,
		"email": "first@example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteContractor(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	worker := createTestUser(t, db, "worker@example.com", models.RoleContractor)
	contractor := createTestContractor(t, db, worker, nil, nil)

	w := httpDo(r, "DELETE", fmt.Sprintf("/api/admin/contractors?id=%d", contractor.ID), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Contractor{}).Count(&count).Error)
	require.Zero(t, count)

	// Missing and unknown IDs.
	w = httpDo(r, "DELETE", "/api/admin/contractors", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = httpDo(r, "DELETE", "/api/admin/contractors?id=9999", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalyticsAggregates(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &stubClassifier{})

	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	citizen := createTestUser(t, db, "citizen@example.com", models.RoleUser)

	low := seedReport(t, db, citizen.ID, 12.97, 77.59, models.ReportStatusPending, nil)
	require.NoError(t, db.Model(low).Updates(map[string]interface{}{"severity": 2, "issue_type": "garbage"}).Error)
	seedReport(t, db, citizen.ID, 12.98, 77.60, models.ReportStatusResolved, nil) // severity 7.5
	critical := seedReport(t, db, citizen.ID, 12.99, 77.61, models.ReportStatusPending, nil)
	require.NoError(t, db.Model(critical).Update("severity", 9.5).Error)

	w := httpDo(r, "GET", "/api/admin/analytics", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalReports         int64 `json:"totalReports"`
		SeverityDistribution struct {
			Low      int64 `json:"low"`
			Moderate int64 `json:"moderate"`
			High     int64 `json:"high"`
			Critical int64 `json:"critical"`
		} `json:"severityDistribution"`
		StatusCounts []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		} `json:"statusCounts"`
		RecentReports   []models.Report `json:"recentReports"`
		TopContributors []struct {
			UserID      uint  `json:"userId"`
			ReportCount int64 `json:"reportCount"`
		} `json:"topContributors"`
		MonthlyTrend []struct {
			Month string `json:"month"`
			Count int64  `json:"count"`
		} `json:"monthlyTrend"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 3, resp.TotalReports)
	require.EqualValues(t, 1, resp.SeverityDistribution.Low)
	require.EqualValues(t, 1, resp.SeverityDistribution.High)
	require.EqualValues(t, 1, resp.SeverityDistribution.Critical)
	require.Len(t, resp.RecentReports, 3)
	require.Len(t, resp.TopContributors, 1)
	require.Equal(t, citizen.ID, resp.TopContributors[0].UserID)
	require.EqualValues(t, 3, resp.TopContributors[0].ReportCount)
	require.NotEmpty(t, resp.MonthlyTrend)
}
