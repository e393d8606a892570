package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

// GenerateMonthlyFeesTaskDef runs the monthly fee generator. It is
// scheduled as a recurring task on the first of every month.
type GenerateMonthlyFeesTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *GenerateMonthlyFeesTaskDef) TaskID() string {
	return "generate_monthly_fees"
}

// HandleExecution creates the current month's fees for every user.
func (t *GenerateMonthlyFeesTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	created, err := services.NewFeeService(db).GenerateMonthlyFees(time.Now())
	if err != nil {
		return nil, err
	}
	log.Printf("[Task: %s] created %d fees", t.TaskID(), created)
	return map[string]interface{}{
		"status":  "success",
		"created": created,
	}, nil
}

// GenerateMonthlyFeesTask is the singleton instance of GenerateMonthlyFeesTaskDef
var GenerateMonthlyFeesTask = &GenerateMonthlyFeesTaskDef{}

// SweepOverdueFeesTaskDef runs the daily overdue sweep.
type SweepOverdueFeesTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SweepOverdueFeesTaskDef) TaskID() string {
	return "sweep_overdue_fees"
}

// HandleExecution flips past-due PENDING fees to OVERDUE.
func (t *SweepOverdueFeesTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	swept, err := services.NewFeeService(db).SweepOverdue(time.Now())
	if err != nil {
		return nil, err
	}
	log.Printf("[Task: %s] swept %d fees", t.TaskID(), swept)
	return map[string]interface{}{
		"status": "success",
		"swept":  swept,
	}, nil
}

// SweepOverdueFeesTask is the singleton instance of SweepOverdueFeesTaskDef
var SweepOverdueFeesTask = &SweepOverdueFeesTaskDef{}

// Recurrence rules for the fee jobs: generation on the 1st of each month,
// the sweep every day.
const (
	monthlyFeeRule = "FREQ=MONTHLY;BYMONTHDAY=1"
	dailySweepRule = "FREQ=DAILY"
	feeJobMaxRetry = 3
)

// EnsureFeeJobs seeds the two recurring fee tasks if no active copy exists.
// Safe to call on every worker start.
func EnsureFeeJobs(db *gorm.DB, now time.Time) error {
	jobs := []struct {
		name string
		rule string
		due  time.Time
	}{
		{GenerateMonthlyFeesTask.TaskID(), monthlyFeeRule, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())},
		{SweepOverdueFeesTask.TaskID(), dailySweepRule, now},
	}

	for _, job := range jobs {
		var count int64
		if err := db.Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ?", job.name, models.ScheduledTaskStatusActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		rule := job.rule
		task, err := BuildScheduledTask(job.name, map[string]interface{}{}, job.due, &rule,
			models.ScheduledTaskTypeRecurring, feeJobMaxRetry)
		if err != nil {
			return err
		}
		if err := db.Create(task).Error; err != nil {
			return err
		}
		log.Printf("Seeded recurring task %s (due %s)", job.name, job.due)
	}
	return nil
}
