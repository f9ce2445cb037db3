package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription is a client's monthly plan. There is at most one per
// client; renewals extend it in place.
type Subscription struct {
	ID            string             `bson:"id" json:"id"`
	ClientID      string             `bson:"clientId" json:"clientId"`
	Status        SubscriptionStatus `bson:"status" json:"status"`
	StartDate     time.Time          `bson:"startDate" json:"startDate"`
	EndDate       time.Time          `bson:"endDate" json:"endDate"`
	PaymentAmount float64            `bson:"paymentAmount" json:"paymentAmount"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID     string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	AutoRenew     bool               `bson:"autoRenew" json:"autoRenew"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version       int64              `bson:"version" json:"version"`
}

// IsActive reports whether the plan is paid up at now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && s.EndDate.After(now)
}

// EffectiveStatus reports an active plan whose end date has passed as
// expired.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionActive && !s.EndDate.After(now) {
		return SubscriptionExpired
	}
	return s.Status
}
