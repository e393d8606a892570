package models

import (
	"time"

	"gorm.io/gorm"
)

// FeeStatus represents the lifecycle state of a maintenance fee
type FeeStatus string

const (
	FeeStatusPending   FeeStatus = "PENDING"
	FeeStatusOverdue   FeeStatus = "OVERDUE"
	FeeStatusPaid      FeeStatus = "PAID"
	FeeStatusCancelled FeeStatus = "CANCELLED"
)

// feeTransitions is the allowed state machine. PAID and CANCELLED are
// terminal.
var feeTransitions = map[FeeStatus][]FeeStatus{
	FeeStatusPending: {FeeStatusOverdue, FeeStatusPaid, FeeStatusCancelled},
	FeeStatusOverdue: {FeeStatusPaid, FeeStatusCancelled},
}

// CanTransition reports whether a fee may move from one status to another.
func CanTransition(from, to FeeStatus) bool {
	for _, next := range feeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MaintenanceFeeAmount is the fixed monthly charge.
const MaintenanceFeeAmount = 10.0

// FeeDueDay is the day of the month a generated fee falls due.
const FeeDueDay = 15

// MaintenanceFee is one user's charge for one month. At most one row exists
// per (user, month key).
type MaintenanceFee struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID  uint      `gorm:"index;uniqueIndex:idx_maintenance_fees_user_month" json:"user_id"`
	Amount  float64   `gorm:"type:decimal(15,2)" json:"amount"`
	DueDate time.Time `gorm:"index" json:"due_date"`
	Month   string    `gorm:"type:varchar(7);uniqueIndex:idx_maintenance_fees_user_month" json:"month"` // "2006-01" key
	Year    int       `json:"year"`

	Status      FeeStatus `gorm:"type:varchar(20);index" json:"status"`
	IsOverdue   bool      `gorm:"default:false" json:"is_overdue"`
	OverdueDays int       `gorm:"default:0" json:"overdue_days"`

	PaidDate  *time.Time `json:"paid_date"`
	PaymentID string     `gorm:"type:varchar(100)" json:"payment_id"`
	OrderID   string     `gorm:"type:varchar(100)" json:"order_id"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// MonthKey formats t as the fee month key, e.g. "2026-01".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// FeeDueDate returns the due date for the month containing t: the 15th at
// midnight in t's location.
func FeeDueDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), FeeDueDay, 0, 0, 0, 0, t.Location())
}

// Outstanding reports whether the fee still counts toward the amount a user
// owes.
func (f MaintenanceFee) Outstanding() bool {
	return f.Status == FeeStatusPending || f.Status == FeeStatusOverdue
}
