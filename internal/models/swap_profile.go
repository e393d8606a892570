package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultSwapEdits is the edit quota granted when a profile is created.
// The quota only ever goes down.
const DefaultSwapEdits = 5

// SwapProfile is a user's section-swap intent: the section they currently
// hold and the sections they would accept in exchange. One profile per user.
type SwapProfile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   uint   `gorm:"uniqueIndex" json:"user_id"`
	Name     string `gorm:"type:varchar(255)" json:"name"`
	Branch   string `gorm:"type:varchar(50);index:idx_swap_profiles_branch_sem" json:"branch"`
	Semester int    `gorm:"index:idx_swap_profiles_branch_sem" json:"semester"`
	Contact  string `gorm:"type:varchar(100)" json:"contact"`

	AllotedSection int   `json:"alloted_section"`
	LookingFor     []int `gorm:"serializer:json" json:"looking_for"`

	// RemoteID points at the matched counterpart's profile id. A non-nil
	// RemoteID must always be mirrored by the counterpart; anything else is
	// a corruption state, which is why both sides are written in one
	// transaction.
	RemoteID *uint `json:"remote_id"`

	EditsRemaining int `gorm:"default:5" json:"edits_remaining"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsMatched reports whether this profile is currently linked to another.
func (p SwapProfile) IsMatched() bool {
	return p.RemoteID != nil
}

// WantsSection reports whether section is on the profile's wish-list.
func (p SwapProfile) WantsSection(section int) bool {
	for _, s := range p.LookingFor {
		if s == section {
			return true
		}
	}
	return false
}

// MutuallyCompatible reports whether two profiles could swap: each holds a
// section the other is looking for. Matching is not enforced server-side at
// accept time; this only drives browse-listing hints.
func MutuallyCompatible(a, b SwapProfile) bool {
	return a.WantsSection(b.AllotedSection) && b.WantsSection(a.AllotedSection)
}
