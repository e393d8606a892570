package models

import (
	"testing"
	"time"
)

func TestNextDueAfterOneTime(t *testing.T) {
	due := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	task := ScheduledTask{TaskType: ScheduledTaskTypeOneTime, Due: due}

	if got := task.NextDueAfter(due.AddDate(0, 0, 10)); !got.Equal(due) {
		t.Errorf("NextDueAfter = %v; want %v", got, due)
	}
}

func TestNextDueAfterDailyRule(t *testing.T) {
	rule := "FREQ=DAILY"
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	task := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               start,
		RecurringInterval: &rule,
	}

	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC)

	if got := task.NextDueAfter(now); !got.Equal(want) {
		t.Errorf("NextDueAfter = %v; want %v", got, want)
	}
}

func TestNextDueAfterMonthlyRule(t *testing.T) {
	rule := "FREQ=MONTHLY;BYMONTHDAY=1"
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	task := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               start,
		RecurringInterval: &rule,
	}

	now := time.Date(2026, time.January, 1, 0, 30, 0, 0, time.UTC)
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	if got := task.NextDueAfter(now); !got.Equal(want) {
		t.Errorf("NextDueAfter = %v; want %v", got, want)
	}
}

func TestNextDueAfterBadRuleFallsBack(t *testing.T) {
	rule := "not-an-rrule"
	due := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	task := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               due,
		RecurringInterval: &rule,
	}

	if got := task.NextDueAfter(due.AddDate(0, 1, 0)); !got.Equal(due) {
		t.Errorf("NextDueAfter = %v; want fallback to %v", got, due)
	}
}
