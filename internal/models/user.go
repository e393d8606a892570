package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin   UserType = "Admin"
	UserTypeStudent UserType = "Student"
)

// User represents a registered student or admin
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string   `gorm:"type:varchar(255)" json:"name"`
	Phone    string   `gorm:"type:varchar(50)" json:"phone"`
	Email    string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Branch   string   `gorm:"type:varchar(50)" json:"branch"`
	UserType UserType `gorm:"type:varchar(20);default:'Student'" json:"user_type"`

	// MaintenanceFeeDue is a denormalized sum of this user's unpaid fees.
	// It is adjusted in lockstep with fee status changes and reconciled
	// against the fee rows on every detail read.
	MaintenanceFeeDue      float64    `gorm:"type:decimal(15,2);default:0" json:"maintenance_fee_due"`
	LastMaintenancePayment *time.Time `json:"last_maintenance_payment"`

	// Relationships
	MaintenanceFees []MaintenanceFee `gorm:"foreignKey:UserID" json:"maintenance_fees,omitempty"`
}
