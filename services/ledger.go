package services

import (
	"errors"
	"fmt"

	"github.com/civic-india/api-go/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsufficientPointsError reports a debit that exceeds the derived balance.
type InsufficientPointsError struct {
	Available int
	Requested int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: available %d, requested %d", e.Available, e.Requested)
}

var ErrUserNotFound = errors.New("user not found")

// Ledger owns all point movements. Every credit and debit appends a signed
// Point row and adjusts the user's cached totals in the same transaction; the
// ledger rows stay the source of truth and the caches are recomputable.
type Ledger struct {
	DB *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{DB: db}
}

// lockUser fetches the user row, taking a FOR UPDATE lock on dialects that
// support it so concurrent debits serialize on the balance check. SQLite has a
// single writer, so the clause is skipped there.
func (l *Ledger) lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ledgerBalance derives the available balance by summing the user's ledger
// rows. The cached column is deliberately not trusted here.
func (l *Ledger) ledgerBalance(tx *gorm.DB, userID uint) (int, error) {
	var balance int
	err := tx.Model(&models.Point{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	return balance, err
}

// Credit appends an earned entry and raises both cached totals. amount must be
// positive.
func (l *Ledger) Credit(userID uint, amount int, description string, reportID *uint) (*models.Point, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	var entry *models.Point
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := l.lockUser(tx, userID); err != nil {
			return err
		}
		return l.creditTx(tx, userID, amount, description, reportID, &entry)
	})
	return entry, err
}

// CreditTx applies a credit inside a caller-owned transaction, for flows that
// pair the award with another write (report creation, job completion).
func (l *Ledger) CreditTx(tx *gorm.DB, userID uint, amount int, description string, reportID *uint) (*models.Point, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	var entry *models.Point
	if err := l.creditTx(tx, userID, amount, description, reportID, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Ledger) creditTx(tx *gorm.DB, userID uint, amount int, description string, reportID *uint, out **models.Point) error {
	point := models.Point{
		UserID:      userID,
		Type:        models.PointTypeEarned,
		Amount:      amount,
		Description: description,
		ReportID:    reportID,
	}
	if err := tx.Create(&point).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"total_points":     gorm.Expr("total_points + ?", amount),
			"available_points": gorm.Expr("available_points + ?", amount),
		}).Error; err != nil {
		return err
	}

	*out = &point
	return nil
}

// Debit appends a redeemed entry after verifying the ledger-derived balance
// covers the amount. The lock, balance check, ledger write and cache update
// all happen in one transaction so racing debits cannot both pass the check.
func (l *Ledger) Debit(userID uint, amount int, description string) (*models.Point, error) {
	var entry *models.Point
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = l.DebitTx(tx, userID, amount, description)
		return err
	})
	return entry, err
}

// DebitTx applies a debit inside a caller-owned transaction, for flows that
// pair the deduction with another write (coupon issuance).
func (l *Ledger) DebitTx(tx *gorm.DB, userID uint, amount int, description string) (*models.Point, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	if _, err := l.lockUser(tx, userID); err != nil {
		return nil, err
	}

	available, err := l.ledgerBalance(tx, userID)
	if err != nil {
		return nil, err
	}
	if amount > available {
		return nil, &InsufficientPointsError{Available: available, Requested: amount}
	}

	point := models.Point{
		UserID:      userID,
		Type:        models.PointTypeRedeemed,
		Amount:      -amount,
		Description: description,
	}
	if err := tx.Create(&point).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("available_points", gorm.Expr("available_points - ?", amount)).Error; err != nil {
		return nil, err
	}

	return &point, nil
}

// Balance derives total and available points from the ledger.
func (l *Ledger) Balance(userID uint) (total int, available int, err error) {
	err = l.DB.Model(&models.Point{}).
		Where("user_id = ? AND amount > 0", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, 0, err
	}

	available, err = l.ledgerBalance(l.DB, userID)
	return total, available, err
}

// Reconcile recomputes the cached totals from the ledger and rewrites them if
// they have drifted.
func (l *Ledger) Reconcile(userID uint) error {
	return l.DB.Transaction(func(tx *gorm.DB) error {
		user, err := l.lockUser(tx, userID)
		if err != nil {
			return err
		}

		var total int
		if err := tx.Model(&models.Point{}).
			Where("user_id = ? AND amount > 0", userID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		available, err := l.ledgerBalance(tx, userID)
		if err != nil {
			return err
		}

		if user.TotalPoints == total && user.AvailablePoints == available {
			return nil
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"total_points":     total,
				"available_points": available,
			}).Error
	})
}

// History returns the user's most recent ledger entries, newest first.
func (l *Ledger) History(userID uint, limit int) ([]models.Point, error) {
	var points []models.Point
	err := l.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&points).Error
	return points, err
}
