package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

// NotificationRecipient identifies who a swap notification goes to.
type NotificationRecipient struct {
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
}

// SendSwapNotificationArgs defines the arguments for a swap notification task.
// Counterpart fields are only set for match-found events.
type SendSwapNotificationArgs struct {
	Recipient          NotificationRecipient `json:"recipient"`
	Subject            string                `json:"subject"`
	Template           string                `json:"template"`
	CounterpartName    string                `json:"counterpart_name"`
	CounterpartContact string                `json:"counterpart_contact"`
	CounterpartSection int                   `json:"counterpart_section"`
	CounterpartWants   []int                 `json:"counterpart_wants"`
}

// SendSwapNotificationTaskDef delivers one swap notification over the
// recipient's preferred channel.
type SendSwapNotificationTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendSwapNotificationTaskDef) TaskID() string {
	return "send_swap_notification"
}

// CreateTask builds a ScheduledTask record for this task
func (t *SendSwapNotificationTaskDef) CreateTask(args SendSwapNotificationArgs) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution sends the notification based on the recipient's channel
// preference. A failed delivery surfaces as an error; the worker owns the
// retries, up to the task's attempt limit.
func (t *SendSwapNotificationTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args SendSwapNotificationArgs
	if err := decodeArgs(task.Arguments, &args); err != nil {
		return nil, err
	}

	var pref models.UserNotifPreference
	err := db.Where("user_id = ?", args.Recipient.UserID).First(&pref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// No preference row means email.
			pref = models.UserNotifPreference{
				UserID:  args.Recipient.UserID,
				Channel: models.NotificationChannelEmail,
			}
		} else {
			return nil, fmt.Errorf("failed to fetch preference for user %d: %w", args.Recipient.UserID, err)
		}
	}

	msg := RenderNotification(args.Template, args)

	var sendErr error
	switch pref.Channel {
	case models.NotificationChannelEmail:
		sendErr = sendEmailNotif(args, msg)
	case models.NotificationChannelWhatsapp:
		sendErr = sendWhatsappNotif(args, msg, pref)
	case models.NotificationChannelNone:
		log.Printf("Notification disabled for user %d", args.Recipient.UserID)
		return map[string]interface{}{"status": "skipped"}, nil
	default:
		log.Printf("Unsupported notification channel %s for user %d", pref.Channel, args.Recipient.UserID)
		return map[string]interface{}{"status": "skipped"}, nil
	}

	if sendErr != nil {
		return nil, sendErr
	}

	return map[string]interface{}{
		"status":  "success",
		"channel": string(pref.Channel),
	}, nil
}

// SendSwapNotificationTask is the singleton instance of SendSwapNotificationTaskDef
var SendSwapNotificationTask = &SendSwapNotificationTaskDef{}

func sendEmailNotif(args SendSwapNotificationArgs, msg string) error {
	if args.Recipient.Email == "" {
		return fmt.Errorf("recipient email is empty")
	}

	subject := args.Subject
	if subject == "" {
		subject = "Section swap update"
	}

	return services.NewEmailService().SendEmail([]string{args.Recipient.Email}, subject, msg)
}

func sendWhatsappNotif(args SendSwapNotificationArgs, msg string, pref models.UserNotifPreference) error {
	var chatId string
	if pref.WhatsappTargetType == models.WhatsappTargetTypeGroup {
		chatId = pref.WhatsappGroupID
		if chatId == "" {
			return fmt.Errorf("group ID is empty")
		}
	} else {
		chatId = args.Recipient.PhoneNumber
		if chatId == "" {
			return fmt.Errorf("recipient phone number is empty")
		}
	}

	return services.NewWahaService().SendMessage(chatId, msg)
}

// RenderNotification substitutes the template placeholders with recipient
// and counterpart details.
func RenderNotification(template string, args SendSwapNotificationArgs) string {
	wishlist := make([]string, 0, len(args.CounterpartWants))
	for _, s := range args.CounterpartWants {
		wishlist = append(wishlist, fmt.Sprintf("%d", s))
	}

	res := strings.ReplaceAll(template, "$name", args.Recipient.Name)
	res = strings.ReplaceAll(res, "$counterpart_name", args.CounterpartName)
	res = strings.ReplaceAll(res, "$counterpart_contact", args.CounterpartContact)
	res = strings.ReplaceAll(res, "$counterpart_section", fmt.Sprintf("%d", args.CounterpartSection))
	res = strings.ReplaceAll(res, "$counterpart_wishlist", strings.Join(wishlist, ", "))
	return res
}
