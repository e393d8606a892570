package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

// FeeService owns the maintenance fee ledger: monthly generation, the daily
// overdue sweep, payment application and the reconciliation read.
type FeeService struct {
	db *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{db: db}
}

// GenerateMonthlyFees creates the current month's PENDING fee for every user
// that does not have one yet and bumps each user's cached due total.
// Per-user failures are logged and the run continues; there is no global
// rollback.
func (s *FeeService) GenerateMonthlyFees(now time.Time) (created int, err error) {
	month := models.MonthKey(now)
	dueDate := models.FeeDueDate(now)

	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	for _, user := range users {
		var count int64
		if err := s.db.Model(&models.MaintenanceFee{}).
			Where("user_id = ? AND month = ?", user.ID, month).
			Count(&count).Error; err != nil {
			log.Printf("fee generation: count failed for user %d: %v", user.ID, err)
			continue
		}
		if count > 0 {
			continue
		}

		fee := models.MaintenanceFee{
			UserID:  user.ID,
			Amount:  models.MaintenanceFeeAmount,
			DueDate: dueDate,
			Month:   month,
			Year:    now.Year(),
			Status:  models.FeeStatusPending,
		}
		if err := s.db.Create(&fee).Error; err != nil {
			log.Printf("fee generation: create failed for user %d: %v", user.ID, err)
			continue
		}

		if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("maintenance_fee_due", gorm.Expr("maintenance_fee_due + ?", fee.Amount)).Error; err != nil {
			// The cached total is stale until the next reconciliation read.
			log.Printf("fee generation: due total update failed for user %d: %v", user.ID, err)
		}
		created++
	}

	return created, nil
}

// SweepOverdue flips every PENDING fee whose due date has passed to OVERDUE
// and records how many days it is late. Fees already swept are filtered out
// by status, so re-running within the same day is a no-op.
func (s *FeeService) SweepOverdue(now time.Time) (swept int, err error) {
	var fees []models.MaintenanceFee
	if err := s.db.Where("status = ? AND due_date < ?", models.FeeStatusPending, now).
		Find(&fees).Error; err != nil {
		return 0, fmt.Errorf("failed to list pending fees: %w", err)
	}

	for _, fee := range fees {
		if !models.CanTransition(fee.Status, models.FeeStatusOverdue) {
			log.Printf("overdue sweep: illegal transition %s -> OVERDUE for fee %d", fee.Status, fee.ID)
			continue
		}
		updates := map[string]interface{}{
			"status":       models.FeeStatusOverdue,
			"is_overdue":   true,
			"overdue_days": OverdueDays(fee.DueDate, now),
		}
		if err := s.db.Model(&fee).Updates(updates).Error; err != nil {
			log.Printf("overdue sweep: update failed for fee %d: %v", fee.ID, err)
			continue
		}
		swept++
	}

	return swept, nil
}

// PaymentResult reports what a payment application did.
type PaymentResult struct {
	PaidFees        []models.MaintenanceFee `json:"paid_fees"`
	PaidAmount      float64                 `json:"paid_amount"`
	RemainingAmount float64                 `json:"remaining_amount"`
}

// ApplyPayment settles a user's fees oldest-due-first from the tendered
// amount. A fee is either fully paid or left untouched; the remainder is
// returned to the caller. Returns ErrNotFound when the user has no
// outstanding fees.
func (s *FeeService) ApplyPayment(userID uint, paymentID, orderID string, amount float64) (*PaymentResult, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var fees []models.MaintenanceFee
	if err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.FeeStatus{models.FeeStatusPending, models.FeeStatusOverdue}).
		Order("due_date asc").Find(&fees).Error; err != nil {
		return nil, err
	}
	if len(fees) == 0 {
		return nil, fmt.Errorf("no outstanding fees for user %d: %w", userID, ErrNotFound)
	}

	paidIdx, _, _ := AllocatePayment(fees, amount)

	now := time.Now()
	result := &PaymentResult{}
	for _, i := range paidIdx {
		fee := fees[i]
		if !models.CanTransition(fee.Status, models.FeeStatusPaid) {
			log.Printf("payment: illegal transition %s -> PAID for fee %d", fee.Status, fee.ID)
			continue
		}
		updates := map[string]interface{}{
			"status":     models.FeeStatusPaid,
			"paid_date":  &now,
			"payment_id": paymentID,
			"order_id":   orderID,
		}
		if err := s.db.Model(&fee).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to mark fee %d paid: %w", fee.ID, err)
		}
		fee.Status = models.FeeStatusPaid
		fee.PaidDate = &now
		fee.PaymentID = paymentID
		fee.OrderID = orderID
		result.PaidFees = append(result.PaidFees, fee)
		result.PaidAmount += fee.Amount
	}

	// Settlement is accounted from the fees that actually transitioned, so a
	// fee skipped by the transition guard is not charged for.
	result.RemainingAmount = amount - result.PaidAmount

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"maintenance_fee_due":      gorm.Expr("maintenance_fee_due - ?", result.PaidAmount),
		"last_maintenance_payment": &now,
	}).Error; err != nil {
		log.Printf("payment: due total update failed for user %d: %v", userID, err)
	}

	return result, nil
}

// UserFeeDetails is the aggregated fee summary for one user.
type UserFeeDetails struct {
	User            models.User             `json:"user"`
	CurrentMonthFee *models.MaintenanceFee  `json:"current_month_fee"`
	TotalDue        float64                 `json:"total_due"`
	OverdueCount    int                     `json:"overdue_count"`
	OverdueAmount   float64                 `json:"overdue_amount"`
	History         []models.MaintenanceFee `json:"history"`
}

// feeHistoryLimit bounds how many fee rows a detail read returns.
const feeHistoryLimit = 12

// GetUserDetails is the reconciliation read: the due total is recomputed
// from the fee rows and written back when the cached value has drifted.
func (s *FeeService) GetUserDetails(userID uint) (*UserFeeDetails, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var fees []models.MaintenanceFee
	if err := s.db.Where("user_id = ?", userID).Order("due_date desc").Find(&fees).Error; err != nil {
		return nil, err
	}

	total := RecomputeDue(fees)
	if total != user.MaintenanceFeeDue {
		log.Printf("fee reconciliation: user %d cached due %.2f != computed %.2f, correcting",
			userID, user.MaintenanceFeeDue, total)
		if err := s.db.Model(&user).Update("maintenance_fee_due", total).Error; err != nil {
			return nil, fmt.Errorf("failed to reconcile due total: %w", err)
		}
		user.MaintenanceFeeDue = total
	}

	details := &UserFeeDetails{User: user, TotalDue: total}

	month := models.MonthKey(time.Now())
	for i := range fees {
		fee := fees[i]
		if fee.Month == month && details.CurrentMonthFee == nil {
			details.CurrentMonthFee = &fee
		}
		if fee.Status == models.FeeStatusOverdue {
			details.OverdueCount++
			details.OverdueAmount += fee.Amount
		}
	}

	if len(fees) > feeHistoryLimit {
		fees = fees[:feeHistoryLimit]
	}
	details.History = fees

	return details, nil
}

// PaymentHistory returns a user's settled fees, most recent payment first.
func (s *FeeService) PaymentHistory(userID uint) ([]models.MaintenanceFee, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var fees []models.MaintenanceFee
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.FeeStatusPaid).
		Order("paid_date desc").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

// OutstandingTotal returns the sum a user currently owes, computed from the
// fee rows.
func (s *FeeService) OutstandingTotal(userID uint) (float64, error) {
	var fees []models.MaintenanceFee
	if err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.FeeStatus{models.FeeStatusPending, models.FeeStatusOverdue}).
		Find(&fees).Error; err != nil {
		return 0, err
	}
	return RecomputeDue(fees), nil
}
