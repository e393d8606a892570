package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from FeeStatus
		to   FeeStatus
		want bool
	}{
		{FeeStatusPending, FeeStatusOverdue, true},
		{FeeStatusPending, FeeStatusPaid, true},
		{FeeStatusPending, FeeStatusCancelled, true},
		{FeeStatusOverdue, FeeStatusPaid, true},
		{FeeStatusOverdue, FeeStatusCancelled, true},
		{FeeStatusOverdue, FeeStatusPending, false},
		{FeeStatusPaid, FeeStatusPending, false},
		{FeeStatusPaid, FeeStatusOverdue, false},
		{FeeStatusPaid, FeeStatusCancelled, false},
		{FeeStatusCancelled, FeeStatusPaid, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMonthKey(t *testing.T) {
	got := MonthKey(time.Date(2026, time.January, 7, 10, 0, 0, 0, time.UTC))
	if got != "2026-01" {
		t.Errorf("MonthKey = %q; want %q", got, "2026-01")
	}
}

func TestFeeDueDate(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)
	want := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	if got := FeeDueDate(now); !got.Equal(want) {
		t.Errorf("FeeDueDate = %v; want %v", got, want)
	}
}

func TestOutstanding(t *testing.T) {
	tests := []struct {
		status FeeStatus
		want   bool
	}{
		{FeeStatusPending, true},
		{FeeStatusOverdue, true},
		{FeeStatusPaid, false},
		{FeeStatusCancelled, false},
	}

	for _, tt := range tests {
		fee := MaintenanceFee{Status: tt.status}
		if got := fee.Outstanding(); got != tt.want {
			t.Errorf("Outstanding with status %s = %v; want %v", tt.status, got, tt.want)
		}
	}
}
