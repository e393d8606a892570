package services

import (
	"time"

	"campuslink_echo/internal/models"
)

// The fee math lives in plain functions over fee slices so the jobs and the
// payment walk can be tested without a database.

// AllocatePayment walks fees (assumed oldest-due-first) and greedily selects
// the ones the tendered amount fully covers. A fee is never split: the walk
// stops at the first fee the remainder cannot cover. Returns the indexes of
// the covered fees, the amount consumed and the amount left over.
func AllocatePayment(fees []models.MaintenanceFee, amount float64) (paid []int, consumed, remaining float64) {
	remaining = amount
	for i, fee := range fees {
		if remaining < fee.Amount {
			break
		}
		paid = append(paid, i)
		remaining -= fee.Amount
		consumed += fee.Amount
	}
	return paid, consumed, remaining
}

// OverdueDays returns the number of whole days a fee is past due at now.
// Fees not yet due report 0.
func OverdueDays(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}

// RecomputeDue returns the sum of amounts of fees still outstanding
// (PENDING or OVERDUE). This is the authoritative value the user's cached
// MaintenanceFeeDue is reconciled against.
func RecomputeDue(fees []models.MaintenanceFee) float64 {
	var total float64
	for _, fee := range fees {
		if fee.Outstanding() {
			total += fee.Amount
		}
	}
	return total
}
