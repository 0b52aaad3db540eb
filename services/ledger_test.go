package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/civic-india/api-go/models"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Point{}))
	return db
}

func seedLedgerUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Name:     "Ledger User",
		Email:    "ledger@example.com",
		Password: "hashed",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCreditAppendsEntryAndRaisesCaches(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	entry, err := ledger.Credit(user.ID, 10, "Report submitted: pothole", nil)
	require.NoError(t, err)
	require.Equal(t, 10, entry.Amount)
	require.Equal(t, models.PointTypeEarned, entry.Type)

	var cached models.User
	require.NoError(t, db.First(&cached, user.ID).Error)
	require.Equal(t, 10, cached.TotalPoints)
	require.Equal(t, 10, cached.AvailablePoints)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	_, err := ledger.Credit(user.ID, 0, "nothing", nil)
	require.Error(t, err)
	_, err = ledger.Credit(user.ID, -5, "nothing", nil)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Point{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBalanceDerivesFromLedgerRows(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	_, err := ledger.Credit(user.ID, 10, "first report", nil)
	require.NoError(t, err)
	_, err = ledger.Credit(user.ID, 15, "second report", nil)
	require.NoError(t, err)
	_, err = ledger.Debit(user.ID, 5, "small redemption")
	require.NoError(t, err)

	total, available, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Equal(t, 20, available)
}

func TestDebitRejectsOverdraftAndLeavesLedgerUntouched(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	_, err := ledger.Credit(user.ID, 10, "first report", nil)
	require.NoError(t, err)
	_, err = ledger.Credit(user.ID, 15, "second report", nil)
	require.NoError(t, err)
	_, err = ledger.Debit(user.ID, 5, "small redemption")
	require.NoError(t, err)

	_, err = ledger.Debit(user.ID, 25, "too large")
	var insufficient *InsufficientPointsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 20, insufficient.Available)
	require.Equal(t, 25, insufficient.Requested)

	var count int64
	require.NoError(t, db.Model(&models.Point{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 3, count)

	total, available, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Equal(t, 20, available)

	var cached models.User
	require.NoError(t, db.First(&cached, user.ID).Error)
	require.Equal(t, 20, cached.AvailablePoints)
}

func TestDebitStoresNegativeAmount(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	_, err := ledger.Credit(user.ID, 100, "big report", nil)
	require.NoError(t, err)

	entry, err := ledger.Debit(user.ID, 50, "Redeemed Swiggy coupon worth ₹50")
	require.NoError(t, err)
	require.Equal(t, -50, entry.Amount)
	require.Equal(t, models.PointTypeRedeemed, entry.Type)
}

func TestCreditAndDebitUnknownUser(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)

	_, err := ledger.Credit(999, 10, "ghost", nil)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = ledger.Debit(999, 10, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestReconcileRepairsDriftedCaches(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	_, err := ledger.Credit(user.ID, 30, "report", nil)
	require.NoError(t, err)
	_, err = ledger.Debit(user.ID, 10, "redemption")
	require.NoError(t, err)

	// Simulate drift from an out-of-band write.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"total_points": 999, "available_points": 999}).Error)

	require.NoError(t, ledger.Reconcile(user.ID))

	var cached models.User
	require.NoError(t, db.First(&cached, user.ID).Error)
	require.Equal(t, 30, cached.TotalPoints)
	require.Equal(t, 20, cached.AvailablePoints)
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedger(db)
	user := seedLedgerUser(t, db)

	for i := 1; i <= 3; i++ {
		_, err := ledger.Credit(user.ID, i*10, fmt.Sprintf("entry %d", i), nil)
		require.NoError(t, err)
	}

	history, err := ledger.History(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
}
