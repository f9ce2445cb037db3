package models

import "time"

// Weekday is the lower-case English weekday name used as a schedule key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the schedule keys starting on Sunday, matching time.Weekday.
var Weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdayOf(t time.Time) Weekday {
	return Weekdays[t.Weekday()]
}

func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// DaySchedule is one entry of the weekly template.
type DaySchedule struct {
	Start     string `bson:"start" json:"start"`
	End       string `bson:"end" json:"end"`
	Available bool   `bson:"available" json:"available"`
}

// SpecialDate overrides the weekly template for one calendar date.
type SpecialDate struct {
	Available bool   `bson:"available" json:"available"`
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// HasCustomHours reports whether both override bounds are set.
func (s SpecialDate) HasCustomHours() bool {
	return s.StartTime != "" && s.EndTime != ""
}

// AvailabilityRecord is a provider's bookable hours.
type AvailabilityRecord struct {
	ProviderID       string                  `bson:"providerId" json:"providerId"`
	WeeklySchedule   map[Weekday]DaySchedule `bson:"weeklySchedule" json:"weeklySchedule"`
	SpecialDates     map[string]SpecialDate  `bson:"specialDates" json:"specialDates"`
	TimeSlotDuration int                     `bson:"timeSlotDuration" json:"timeSlotDuration"`
	BufferTime       int                     `bson:"bufferTime" json:"bufferTime"`
	UpdatedAt        time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// DefaultAvailability is the record created at provider registration.
func DefaultAvailability(providerID string, now time.Time) *AvailabilityRecord {
	weekday := DaySchedule{Start: "09:00", End: "17:00", Available: true}
	return &AvailabilityRecord{
		ProviderID: providerID,
		WeeklySchedule: map[Weekday]DaySchedule{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
			Saturday:  {Start: "10:00", End: "14:00", Available: true},
			Sunday:    {Start: "", End: "", Available: false},
		},
		SpecialDates:     map[string]SpecialDate{},
		TimeSlotDuration: 60,
		BufferTime:       15,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy so callers can mutate maps freely.
func (r *AvailabilityRecord) Clone() *AvailabilityRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.WeeklySchedule = make(map[Weekday]DaySchedule, len(r.WeeklySchedule))
	for k, v := range r.WeeklySchedule {
		c.WeeklySchedule[k] = v
	}
	c.SpecialDates = make(map[string]SpecialDate, len(r.SpecialDates))
	for k, v := range r.SpecialDates {
		c.SpecialDates[k] = v
	}
	return &c
}
