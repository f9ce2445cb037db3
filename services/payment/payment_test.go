package payment

import (
	"context"
	"strings"
	"testing"

	"marketplace/apperror"
	"marketplace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcessPayment(t *testing.T) {
	h := NewPaymentHandler(zap.NewNop())
	req := models.PaymentRequest{BookingID: "b1", ClientID: "c1", Amount: 35, Currency: "ZAR", Method: models.PaymentMethodCard}

	inv, err := h.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, inv.Status)
	assert.True(t, strings.HasPrefix(inv.PaymentID, "sim_"))

	req.Method = models.PaymentMethodCash
	inv, err = h.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, inv.Status)
	assert.Empty(t, inv.PaymentID)
}

func TestProcessPaymentValidation(t *testing.T) {
	h := NewPaymentHandler(zap.NewNop())
	valid := models.PaymentRequest{BookingID: "b1", ClientID: "c1", Amount: 35, Currency: "ZAR", Method: models.PaymentMethodCard}

	cases := map[string]func(r *models.PaymentRequest){
		"no booking":      func(r *models.PaymentRequest) { r.BookingID = "" },
		"both references": func(r *models.PaymentRequest) { r.SubscriptionID = "s1" },
		"no client":       func(r *models.PaymentRequest) { r.ClientID = "" },
		"zero amount":     func(r *models.PaymentRequest) { r.Amount = 0 },
		"no currency":     func(r *models.PaymentRequest) { r.Currency = "" },
		"bad method":      func(r *models.PaymentRequest) { r.Method = "crypto" },
	}
	for name, mutate := range cases {
		req := valid
		mutate(&req)
		_, err := h.ProcessPayment(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput, name)
	}
}

func TestProcessSubscriptionPayment(t *testing.T) {
	h := NewPaymentHandler(zap.NewNop())
	req := models.PaymentRequest{SubscriptionID: "s1", ClientID: "c1", Amount: 35, Currency: "ZAR", Method: models.PaymentMethodCard}

	inv, err := h.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "s1", inv.SubscriptionID)
	assert.Empty(t, inv.BookingID)
}

func TestVoid(t *testing.T) {
	h := NewPaymentHandler(zap.NewNop())
	inv, err := h.ProcessPayment(context.Background(), models.PaymentRequest{
		BookingID: "b1", ClientID: "c1", Amount: 35, Currency: "ZAR", Method: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	require.NoError(t, h.Void(context.Background(), inv))
	assert.Equal(t, models.PaymentVoided, inv.Status)

	err = h.Void(context.Background(), inv)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	err = h.Void(context.Background(), &models.Invoice{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
