package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campuslink_echo/internal/models"
	"campuslink_echo/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func postCallback(t *testing.T, h *MaintenanceHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/maintenance/payment/callback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.GatewayCallback(e.NewContext(req, rec))
}

func TestGatewayCallbackRecordsUnverifiedPayload(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "test-server-key")
	db := newTestDB(t)

	feeSvc := services.NewFeeService(db)
	mid := services.NewMidtransService()
	h := NewMaintenanceHandler(db, feeSvc, services.NewPaymentService(db, mid, feeSvc), mid)

	body := `{"order_id":"maintenance-7-1700000000","status_code":"200","gross_amount":"30.00",` +
		`"signature_key":"bogus","transaction_status":"settlement","transaction_id":"tx-1"}`
	_, err := postCallback(t, h, body)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("callback with bad signature = %v; want 403", err)
	}

	// The payload is still recorded for auditing, flagged unverified.
	var history models.PaymentCallbackHistory
	if err := db.Where("order_id = ?", "maintenance-7-1700000000").First(&history).Error; err != nil {
		t.Fatalf("callback was not recorded: %v", err)
	}
	if history.Verified {
		t.Error("unverified callback recorded as verified")
	}
}

func TestGatewayCallbackSettlesVerifiedPayment(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "test-server-key")
	db := newTestDB(t)

	user := models.User{Name: "Asha", Email: "asha@example.com", MaintenanceFeeDue: 30}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	for i, month := range []string{"2026-01", "2026-02", "2026-03"} {
		fee := models.MaintenanceFee{
			UserID: user.ID, Amount: 10,
			DueDate: time.Date(2026, time.Month(i+1), 15, 0, 0, 0, 0, time.UTC),
			Month:   month, Year: 2026, Status: models.FeeStatusPending,
		}
		if err := db.Create(&fee).Error; err != nil {
			t.Fatalf("failed to seed fee %s: %v", month, err)
		}
	}

	orderID := fmt.Sprintf("maintenance-%d-1700000000", user.ID)
	session := models.PaymentSession{
		UserID: user.ID, PaymentGateway: models.PaymentGatewayMidtrans,
		OrderID: orderID, GrossAmount: 30, IsActive: true,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	feeSvc := services.NewFeeService(db)
	mid := services.NewMidtransService()
	h := NewMaintenanceHandler(db, feeSvc, services.NewPaymentService(db, mid, feeSvc), mid)

	sig := services.ComputeSignature(orderID, "200", "30.00", "test-server-key")
	body := fmt.Sprintf(`{"order_id":%q,"status_code":"200","gross_amount":"30.00",`+
		`"signature_key":%q,"transaction_status":"settlement","transaction_id":"tx-1"}`, orderID, sig)

	rec, err := postCallback(t, h, body)
	if err != nil {
		t.Fatalf("verified callback returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var paid int64
	if err := db.Model(&models.MaintenanceFee{}).
		Where("user_id = ? AND status = ?", user.ID, models.FeeStatusPaid).
		Count(&paid).Error; err != nil {
		t.Fatalf("failed to count paid fees: %v", err)
	}
	if paid != 3 {
		t.Errorf("paid fees = %d; want 3", paid)
	}

	var reloadedSession models.PaymentSession
	if err := db.First(&reloadedSession, session.ID).Error; err != nil {
		t.Fatalf("failed to reload session: %v", err)
	}
	if reloadedSession.IsActive {
		t.Error("settled session is still active")
	}

	var history models.PaymentCallbackHistory
	if err := db.Where("order_id = ?", orderID).First(&history).Error; err != nil {
		t.Fatalf("callback was not recorded: %v", err)
	}
	if !history.Verified {
		t.Error("verified callback recorded as unverified")
	}
}
