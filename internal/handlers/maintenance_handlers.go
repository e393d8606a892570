package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

type MaintenanceHandler struct {
	db             *gorm.DB
	fees           *services.FeeService
	payments       *services.PaymentService
	midtransClient *services.MidtransService
}

func NewMaintenanceHandler(db *gorm.DB, fees *services.FeeService, payments *services.PaymentService, midtransClient *services.MidtransService) *MaintenanceHandler {
	return &MaintenanceHandler{db: db, fees: fees, payments: payments, midtransClient: midtransClient}
}

// UserDetails returns the aggregated fee summary for a user. This is the
// reconciliation read: the cached due total is corrected from the fee rows
// before it is returned.
func (h *MaintenanceHandler) UserDetails(c echo.Context) error {
	userID, ok := parseUintParam(c.Param("userId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
	}

	details, err := h.fees.GetUserDetails(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

type applyPaymentRequest struct {
	UserID    uint    `json:"userId"`
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

type applyPaymentResponse struct {
	Success         bool                    `json:"success"`
	PaidAmount      float64                 `json:"paidAmount"`
	RemainingAmount float64                 `json:"remainingAmount"`
	PaidFees        []models.MaintenanceFee `json:"paidFees"`
}

// ApplyPayment applies a confirmed payment to a user's fees, oldest first.
func (h *MaintenanceHandler) ApplyPayment(c echo.Context) error {
	var req applyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.UserID == 0 || req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and a positive amount are required")
	}

	result, err := h.fees.ApplyPayment(req.UserID, req.PaymentID, req.OrderID, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, applyPaymentResponse{
		Success:         true,
		PaidAmount:      result.PaidAmount,
		RemainingAmount: result.RemainingAmount,
		PaidFees:        result.PaidFees,
	})
}

// PaymentHistory lists a user's settled fees, most recent first.
func (h *MaintenanceHandler) PaymentHistory(c echo.Context) error {
	userID, ok := parseUintParam(c.Param("userId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
	}

	fees, err := h.fees.PaymentHistory(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payments": fees})
}

type initiatePaymentRequest struct {
	UserID   uint `json:"userId"`
	ForceNew bool `json:"forceNew"`
}

// InitiatePayment starts (or resumes) a gateway checkout covering the
// user's outstanding fees.
func (h *MaintenanceHandler) InitiatePayment(c echo.Context) error {
	var req initiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	result, err := h.payments.InitiatePayment(req.UserID, req.ForceNew, os.Getenv("PAYMENT_FINISH_URL"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GatewayCallback handles midtrans payment notifications. Every payload is
// recorded; only notifications with a valid signature mutate the ledger.
func (h *MaintenanceHandler) GatewayCallback(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	orderID, _ := payload["order_id"].(string)
	statusCode, _ := payload["status_code"].(string)
	grossAmountStr, _ := payload["gross_amount"].(string)
	signatureKey, _ := payload["signature_key"].(string)
	transactionStatus, _ := payload["transaction_status"].(string)
	fraudStatus, _ := payload["fraud_status"].(string)
	paymentID, _ := payload["transaction_id"].(string)

	verified := h.midtransClient.VerifySignature(orderID, statusCode, grossAmountStr, signatureKey)

	metadata, _ := json.Marshal(payload)
	if err := h.db.Create(&models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayMidtrans,
		OrderID:        orderID,
		Verified:       verified,
		Metadata:       metadata,
	}).Error; err != nil {
		c.Logger().Errorf("failed to record payment callback for order %s: %v", orderID, err)
	}

	if !verified {
		return echo.NewHTTPError(http.StatusForbidden, "Invalid signature")
	}

	settle := transactionStatus == "settlement" ||
		(transactionStatus == "capture" && fraudStatus == "accept")

	if settle {
		grossAmount, err := strconv.ParseFloat(grossAmountStr, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid gross amount")
		}
		if _, err := h.payments.SettleOrder(orderID, paymentID, grossAmount); err != nil {
			return err
		}
	} else if transactionStatus == "deny" || transactionStatus == "expire" || transactionStatus == "cancel" {
		h.db.Model(&models.PaymentSession{}).
			Where("order_id = ?", orderID).
			Update("is_active", false)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
