package payment

import (
	"context"
	"fmt"
	"time"

	"marketplace/apperror"
	"marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentHandler captures booking fees and subscription charges. Void
// reverses a capture whose booking or subscription write did not commit.
type PaymentHandler interface {
	ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error)
	Void(ctx context.Context, inv *models.Invoice) error
}

// SimulatedPaymentHandler records payments without contacting a gateway.
// Card payments settle immediately; cash stays pending until collected.
type SimulatedPaymentHandler struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewPaymentHandler(logger *zap.Logger) *SimulatedPaymentHandler {
	return &SimulatedPaymentHandler{logger: logger, now: time.Now}
}

func (h *SimulatedPaymentHandler) ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		InvoiceID:      uuid.New().String(),
		BookingID:      req.BookingID,
		SubscriptionID: req.SubscriptionID,
		ClientID:       req.ClientID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		Status:         models.PaymentPending,
		CreatedAt:      h.now(),
	}

	switch req.Method {
	case models.PaymentMethodCard:
		inv.PaymentID = "sim_" + uuid.New().String()
		inv.Status = models.PaymentCompleted
		h.logger.Info("Card payment successful", zap.String("invoice", inv.InvoiceID),
			zap.String("booking", req.BookingID), zap.String("subscription", req.SubscriptionID))
	case models.PaymentMethodCash:
		h.logger.Info("Cash payment recorded", zap.String("invoice", inv.InvoiceID),
			zap.String("booking", req.BookingID), zap.String("subscription", req.SubscriptionID))
	}
	return inv, nil
}

// Void marks the invoice voided. Simulated captures hold no funds, so this
// only records the reversal.
func (h *SimulatedPaymentHandler) Void(ctx context.Context, inv *models.Invoice) error {
	const op = "payment.Void"
	if inv == nil || inv.InvoiceID == "" {
		return apperror.InvalidInput(op, "invoice is required")
	}
	if inv.Status == models.PaymentVoided {
		return apperror.InvalidTransition(op, "invoice %s already voided", inv.InvoiceID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	inv.Status = models.PaymentVoided
	h.logger.Warn("Payment voided", zap.String("invoice", inv.InvoiceID),
		zap.String("payment", inv.PaymentID), zap.String("booking", inv.BookingID),
		zap.String("subscription", inv.SubscriptionID))
	return nil
}

func validateRequest(req models.PaymentRequest) error {
	const op = "payment.ProcessPayment"
	if (req.BookingID == "") == (req.SubscriptionID == "") {
		return apperror.InvalidInput(op, "exactly one of booking or subscription is required")
	}
	if req.ClientID == "" {
		return apperror.InvalidInput(op, "client is required")
	}
	if req.Amount <= 0 {
		return apperror.InvalidInput(op, "amount must be positive")
	}
	if req.Currency == "" {
		return apperror.InvalidInput(op, "currency is required")
	}
	switch req.Method {
	case models.PaymentMethodCard, models.PaymentMethodCash:
	default:
		return apperror.InvalidInput(op, "unsupported payment method: %s", req.Method)
	}
	return nil
}

// FormatAmount renders an amount for notification text.
func FormatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}
