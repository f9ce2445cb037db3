package models

import "time"

// Suspension is the administrative account block shared by clients and
// providers. A nil SuspensionEndDate means the block is indefinite.
type Suspension struct {
	Suspended         bool       `bson:"suspended" json:"suspended"`
	SuspensionReason  string     `bson:"suspensionReason,omitempty" json:"suspensionReason,omitempty"`
	SuspendedAt       *time.Time `bson:"suspendedAt,omitempty" json:"suspendedAt,omitempty"`
	SuspensionEndDate *time.Time `bson:"suspensionEndDate,omitempty" json:"suspensionEndDate,omitempty"`
	ReinstatedAt      *time.Time `bson:"reinstatedAt,omitempty" json:"reinstatedAt,omitempty"`
}

// IsSuspended treats a block whose end date has passed as lifted.
func (s Suspension) IsSuspended(now time.Time) bool {
	if !s.Suspended {
		return false
	}
	return s.SuspensionEndDate == nil || now.Before(*s.SuspensionEndDate)
}
