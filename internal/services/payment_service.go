package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// PaymentService drives the gateway checkout flow for maintenance fees: one
// snap session per user covering their outstanding total, with session
// reuse while a checkout is still pending.
type PaymentService struct {
	db             *gorm.DB
	midtransClient *MidtransService
	fees           *FeeService
}

func NewPaymentService(db *gorm.DB, midtransClient *MidtransService, fees *FeeService) *PaymentService {
	return &PaymentService{
		db:             db,
		midtransClient: midtransClient,
		fees:           fees,
	}
}

// CheckActiveSession returns the user's active checkout session, or nil.
func (s *PaymentService) CheckActiveSession(userID uint) (*models.PaymentSession, error) {
	var existingSession models.PaymentSession
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at desc").First(&existingSession).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &existingSession, nil
}

// InitiatePaymentResult holds the result of an initiation attempt
type InitiatePaymentResult struct {
	Token       string  `json:"token"`
	RedirectURL string  `json:"redirect_url"`
	OrderID     string  `json:"order_id"`
	GrossAmount float64 `json:"gross_amount"`
	IsExisting  bool    `json:"is_existing"`
}

// InitiatePayment starts or resumes a checkout for the user's outstanding
// fees. A pending session is reused unless forceNew cancels it; settled
// sessions are rejected, failed ones are replaced.
func (s *PaymentService) InitiatePayment(userID uint, forceNew bool, callbackURL string) (*InitiatePaymentResult, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	outstanding, err := s.fees.OutstandingTotal(userID)
	if err != nil {
		return nil, err
	}
	if outstanding <= 0 {
		return nil, fmt.Errorf("no outstanding fees for user %d: %w", userID, ErrNotFound)
	}

	existingSession, err := s.CheckActiveSession(userID)
	if err != nil {
		return nil, err
	}

	if existingSession != nil {
		statusResp, err := s.midtransClient.CheckTransaction(existingSession.OrderID)
		if err == nil {
			switch statusResp.TransactionStatus {
			case "settlement", "capture":
				return nil, fmt.Errorf("payment already made: %w", ErrConflict)
			case "deny", "expire", "cancel", "failure":
				existingSession.IsActive = false
				s.db.Save(existingSession)
			default:
				// Pending at the gateway.
				if forceNew {
					s.midtransClient.CancelTransaction(existingSession.OrderID)
					existingSession.IsActive = false
					s.db.Save(existingSession)
				} else {
					var midtransResp snap.Response
					if err := json.Unmarshal(existingSession.ResponseMetadata, &midtransResp); err == nil {
						return &InitiatePaymentResult{
							Token:       midtransResp.Token,
							RedirectURL: midtransResp.RedirectURL,
							OrderID:     existingSession.OrderID,
							GrossAmount: existingSession.GrossAmount,
							IsExisting:  true,
						}, nil
					}
					// Stored response is unreadable, treat the session as broken.
					existingSession.IsActive = false
					s.db.Save(existingSession)
				}
			}
		} else {
			// Status check failed, assume the session is broken locally.
			existingSession.IsActive = false
			s.db.Save(existingSession)
		}
	}

	orderID := NewMaintenanceOrderID(userID, time.Now())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(outstanding),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Name,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("maintenance-%d", userID),
				Name:  "Hostel maintenance fees",
				Price: int64(outstanding),
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: callbackURL,
		},
	}

	resp, err := s.midtransClient.CreateTransaction(orderID, int64(outstanding), req)
	if err != nil {
		return nil, err
	}

	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(resp)

	session := models.PaymentSession{
		UserID:           userID,
		PaymentGateway:   models.PaymentGatewayMidtrans,
		OrderID:          orderID,
		GrossAmount:      outstanding,
		IsActive:         true,
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	s.db.Create(&session)

	return &InitiatePaymentResult{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		OrderID:     orderID,
		GrossAmount: outstanding,
		IsExisting:  false,
	}, nil
}

// SettleOrder applies a confirmed gateway payment to the user encoded in
// the order id and deactivates the checkout session.
func (s *PaymentService) SettleOrder(orderID, paymentID string, grossAmount float64) (*PaymentResult, error) {
	userID, err := ParseMaintenanceOrderID(orderID)
	if err != nil {
		return nil, err
	}

	result, err := s.fees.ApplyPayment(userID, paymentID, orderID, grossAmount)
	if err != nil {
		return nil, err
	}

	s.db.Model(&models.PaymentSession{}).
		Where("order_id = ?", orderID).
		Update("is_active", false)

	return result, nil
}

// NewMaintenanceOrderID builds a gateway order id: maintenance-{userID}-{unix}.
func NewMaintenanceOrderID(userID uint, now time.Time) string {
	return fmt.Sprintf("maintenance-%d-%d", userID, now.Unix())
}

// ParseMaintenanceOrderID extracts the user id from a maintenance order id.
func ParseMaintenanceOrderID(orderID string) (uint, error) {
	parts := strings.Split(orderID, "-")
	if len(parts) != 3 || parts[0] != "maintenance" {
		return 0, fmt.Errorf("invalid order id %q: %w", orderID, ErrBadRequest)
	}
	userID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in order id %q: %w", orderID, ErrBadRequest)
	}
	return uint(userID), nil
}
