package booking

import (
	"context"
	"time"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/services/payment"

	"go.uber.org/zap"
)

// PayBookingFee captures the platform fee for an active booking. The
// payment runs before the booking write; a booking that changed underneath
// it still fails on the state checks inside the transition, and the
// captured invoice is voided.
func (s *DefaultBookingService) PayBookingFee(ctx context.Context, actor models.Actor, id string, method models.PaymentMethod) (*models.Booking, error) {
	const op = "booking.PayBookingFee"
	if s.Payments == nil {
		return nil, apperror.New(apperror.KindInternal, op, "payments are not configured")
	}

	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(op, actor, b); err != nil {
		return nil, err
	}

	inv, err := s.Payments.ProcessPayment(ctx, models.PaymentRequest{
		BookingID: b.ID,
		ClientID:  b.ClientID,
		Amount:    s.Policy.BookingFee,
		Currency:  s.Policy.Currency,
		Method:    method,
	})
	if err != nil {
		return nil, err
	}

	paid, err := s.transition(ctx, "pay_booking_fee", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := checkPayable(op, actor, b); err != nil {
			s.Logger.Error("booking changed after payment was captured",
				zap.String("bookingID", b.ID), zap.String("invoiceID", inv.InvoiceID), zap.Error(err))
			return nil, err
		}
		b.BookingFee = inv.Amount
		b.PaymentStatus = inv.Status
		b.PaymentID = inv.PaymentID
		if inv.Status == models.PaymentCompleted {
			b.PaidAt = ptr(now)
		}
		return []notification.Notice{
			toProvider(b, models.NotifyBookingPaid,
				"Booking fee of "+payment.FormatAmount(inv.Amount, inv.Currency)+" received for "+b.Date,
				map[string]string{"method": string(inv.Method), "paymentStatus": string(inv.Status)}),
		}, nil
	})
	if err != nil {
		s.voidInvoice(ctx, inv, err)
		return nil, err
	}
	return paid, nil
}

// voidInvoice reverses a capture whose booking write failed. The request
// context may already be done, so the void runs detached from it.
func (s *DefaultBookingService) voidInvoice(ctx context.Context, inv *models.Invoice, cause error) {
	if err := s.Payments.Void(context.WithoutCancel(ctx), inv); err != nil {
		s.Logger.Error("failed to void payment for unpaid booking",
			zap.String("bookingID", inv.BookingID),
			zap.String("invoiceID", inv.InvoiceID),
			zap.String("paymentID", inv.PaymentID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	s.Logger.Warn("payment voided after booking write failed",
		zap.String("bookingID", inv.BookingID), zap.String("invoiceID", inv.InvoiceID), zap.Error(cause))
}

func checkPayable(op string, actor models.Actor, b *models.Booking) error {
	if err := requireClient(op, actor, b); err != nil {
		return err
	}
	if b.State().IsTerminal() {
		return apperror.InvalidTransition(op, "booking %s is %s", b.ID, b.State())
	}
	if b.PaymentStatus != models.PaymentUnpaid && b.PaymentStatus != "" {
		return apperror.InvalidTransition(op, "booking fee already %s", b.PaymentStatus)
	}
	return nil
}
