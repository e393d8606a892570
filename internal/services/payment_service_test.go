package services

import (
	"errors"
	"testing"
	"time"
)

func TestMaintenanceOrderIDRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	orderID := NewMaintenanceOrderID(7, now)

	if orderID != "maintenance-7-1700000000" {
		t.Fatalf("NewMaintenanceOrderID = %q; want %q", orderID, "maintenance-7-1700000000")
	}

	userID, err := ParseMaintenanceOrderID(orderID)
	if err != nil {
		t.Fatalf("ParseMaintenanceOrderID returned error: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d; want 7", userID)
	}
}

func TestParseMaintenanceOrderIDRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
	}{
		{"empty", ""},
		{"wrong prefix", "payment-due-7-1700000000"},
		{"missing timestamp", "maintenance-7"},
		{"non-numeric user", "maintenance-abc-1700000000"},
		{"too many parts", "maintenance-7-17000-extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaintenanceOrderID(tt.orderID)
			if err == nil {
				t.Fatalf("ParseMaintenanceOrderID(%q) did not fail", tt.orderID)
			}
			if !errors.Is(err, ErrBadRequest) {
				t.Errorf("error is not ErrBadRequest: %v", err)
			}
		})
	}
}
