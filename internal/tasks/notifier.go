package tasks

import (
	"fmt"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

// Notification bodies. Placeholders are filled per recipient when the task
// runs.
const (
	matchFoundTemplate = "Hi $name, good news! $counterpart_name accepted a section swap with you. " +
		"They hold section $counterpart_section and were looking for $counterpart_wishlist. " +
		"Contact them at $counterpart_contact to complete the swap."
	unmatchedTemplate = "Hi $name, your section swap match was cancelled by an admin and your " +
		"profile has been removed from the swap pool."
	profileRemovedTemplate = "Hi $name, your section swap profile has been removed."
)

// TaskNotifier implements services.SwapNotifier by enqueueing one
// notification task per recipient. Delivery happens in the worker, so a
// slow or failing channel never blocks the request that triggered it.
type TaskNotifier struct {
	db *gorm.DB
}

func NewTaskNotifier(db *gorm.DB) *TaskNotifier {
	return &TaskNotifier{db: db}
}

// MatchFound notifies one party of a new match with the counterpart's
// contact details.
func (n *TaskNotifier) MatchFound(recipient, counterpart models.SwapProfile) error {
	args, err := n.recipientArgs(recipient)
	if err != nil {
		return err
	}
	args.Subject = "Section swap match found"
	args.Template = matchFoundTemplate
	args.CounterpartName = counterpart.Name
	args.CounterpartContact = counterpart.Contact
	args.CounterpartSection = counterpart.AllotedSection
	args.CounterpartWants = counterpart.LookingFor
	return n.enqueue(args)
}

// Unmatched notifies one party that an admin dissolved their match.
func (n *TaskNotifier) Unmatched(recipient models.SwapProfile) error {
	args, err := n.recipientArgs(recipient)
	if err != nil {
		return err
	}
	args.Subject = "Section swap match cancelled"
	args.Template = unmatchedTemplate
	return n.enqueue(args)
}

// ProfileRemoved notifies a user their profile was deleted.
func (n *TaskNotifier) ProfileRemoved(recipient models.SwapProfile) error {
	args, err := n.recipientArgs(recipient)
	if err != nil {
		return err
	}
	args.Subject = "Section swap profile removed"
	args.Template = profileRemovedTemplate
	return n.enqueue(args)
}

func (n *TaskNotifier) recipientArgs(profile models.SwapProfile) (SendSwapNotificationArgs, error) {
	var user models.User
	if err := n.db.First(&user, profile.UserID).Error; err != nil {
		return SendSwapNotificationArgs{}, fmt.Errorf("failed to load user %d: %w", profile.UserID, err)
	}
	return SendSwapNotificationArgs{
		Recipient: NotificationRecipient{
			UserID:      user.ID,
			Name:        user.Name,
			Email:       user.Email,
			PhoneNumber: user.Phone,
		},
	}, nil
}

func (n *TaskNotifier) enqueue(args SendSwapNotificationArgs) error {
	task, err := SendSwapNotificationTask.CreateTask(args)
	if err != nil {
		return err
	}
	return n.db.Create(task).Error
}
