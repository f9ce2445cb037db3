package models

import "time"

// Reliability policy.
const (
	InitialReliabilityScore = 100
	MaxReliabilityScore     = 100
	MinReliabilityScore     = 0
	SecondAttemptPenalty    = 5
	ThirdStrikePenalty      = 15
	CompletionBonus         = 1
	PenaltyDuration         = 7 * 24 * time.Hour
)

// ReliabilityRecord is embedded in the provider document. Score and
// BookingEnabled are pointers so a record that was never initialized can be
// told apart from a zero score.
type ReliabilityRecord struct {
	ReliabilityScore    *int       `bson:"reliabilityScore,omitempty" json:"reliabilityScore,omitempty"`
	CancellationCount   int        `bson:"cancellationCount" json:"cancellationCount"`
	RecentCancellations int        `bson:"recentCancellations" json:"recentCancellations"`
	LastPenaltyDate     *time.Time `bson:"lastPenaltyDate,omitempty" json:"lastPenaltyDate,omitempty"`
	PenaltyEndDate      *time.Time `bson:"penaltyEndDate,omitempty" json:"penaltyEndDate,omitempty"`
	BookingEnabled      *bool      `bson:"bookingEnabled,omitempty" json:"bookingEnabled,omitempty"`
}

// ReliabilityStatus is the effective view of a record at a point in time.
type ReliabilityStatus struct {
	ReliabilityScore    int        `json:"reliabilityScore"`
	CancellationCount   int        `json:"cancellationCount"`
	RecentCancellations int        `json:"recentCancellations"`
	LastPenaltyDate     *time.Time `json:"lastPenaltyDate,omitempty"`
	PenaltyEndDate      *time.Time `json:"penaltyEndDate,omitempty"`
	BookingEnabled      bool       `json:"bookingEnabled"`
	InPenaltyPeriod     bool       `json:"inPenaltyPeriod"`

	// NeedsWrite is set when the stored record is uninitialized or its
	// penalty has lapsed and the effective values must be persisted.
	NeedsWrite bool `json:"-"`
}

func (r ReliabilityRecord) Initialized() bool {
	return r.ReliabilityScore != nil && r.BookingEnabled != nil
}

// Effective applies defaults and lazy penalty expiry.
func (r ReliabilityRecord) Effective(now time.Time) ReliabilityStatus {
	st := ReliabilityStatus{
		ReliabilityScore:    InitialReliabilityScore,
		CancellationCount:   r.CancellationCount,
		RecentCancellations: r.RecentCancellations,
		LastPenaltyDate:     r.LastPenaltyDate,
		PenaltyEndDate:      r.PenaltyEndDate,
		BookingEnabled:      true,
		NeedsWrite:          !r.Initialized(),
	}
	if r.ReliabilityScore != nil {
		st.ReliabilityScore = ClampScore(*r.ReliabilityScore)
	}
	if r.BookingEnabled != nil {
		st.BookingEnabled = *r.BookingEnabled
	}
	if !st.BookingEnabled && st.PenaltyEndDate != nil && !now.Before(*st.PenaltyEndDate) {
		st.BookingEnabled = true
		st.PenaltyEndDate = nil
		st.NeedsWrite = true
	}
	st.InPenaltyPeriod = !st.BookingEnabled
	return st
}

// Record converts an effective status back into its stored form.
func (s ReliabilityStatus) Record() ReliabilityRecord {
	score := ClampScore(s.ReliabilityScore)
	enabled := s.BookingEnabled
	return ReliabilityRecord{
		ReliabilityScore:    &score,
		CancellationCount:   s.CancellationCount,
		RecentCancellations: s.RecentCancellations,
		LastPenaltyDate:     s.LastPenaltyDate,
		PenaltyEndDate:      s.PenaltyEndDate,
		BookingEnabled:      &enabled,
	}
}

// ClampScore bounds a score to the allowed range.
func ClampScore(score int) int {
	if score > MaxReliabilityScore {
		return MaxReliabilityScore
	}
	if score < MinReliabilityScore {
		return MinReliabilityScore
	}
	return score
}

// NewReliabilityRecord returns an initialized record with the default score.
func NewReliabilityRecord() ReliabilityRecord {
	return ReliabilityStatus{ReliabilityScore: InitialReliabilityScore, BookingEnabled: true}.Record()
}
