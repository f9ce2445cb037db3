package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketplace/apperror"
	"marketplace/models"
)

// DateLayout is the ISO calendar-date key used by bookings and special dates.
const DateLayout = "2006-01-02"

// Fallback window for days with no schedule entry or no hours set.
const (
	DefaultStart = "09:00"
	DefaultEnd   = "17:00"
)

// ResolveSlots lists the bookable times on date, in order.
//
// A special date overrides the weekly template: unavailable yields nothing,
// custom hours replace the window, and an available entry without hours
// keeps the weekday's hours. A weekday with no entry uses the default
// window. Slots step from start (inclusive) to end (exclusive).
func ResolveSlots(rec *models.AvailabilityRecord, date time.Time, step time.Duration) ([]string, error) {
	if step <= 0 || step%time.Minute != 0 {
		return nil, apperror.New(apperror.KindInvalidAvailabilityConfig, "ResolveSlots", "slot step %s must be a positive whole number of minutes", step)
	}

	start, end := DefaultStart, DefaultEnd
	if rec != nil {
		if special, ok := rec.SpecialDates[date.Format(DateLayout)]; ok {
			if !special.Available {
				return []string{}, nil
			}
			if special.HasCustomHours() {
				return generate(special.StartTime, special.EndTime, step)
			}
		}
		if day, ok := rec.WeeklySchedule[models.WeekdayOf(date)]; ok {
			if !day.Available {
				return []string{}, nil
			}
			if day.Start != "" {
				start = day.Start
			}
			if day.End != "" {
				end = day.End
			}
		}
	}
	return generate(start, end, step)
}

func generate(startStr, endStr string, step time.Duration) ([]string, error) {
	start, err := ParseClock(startStr)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return nil, err
	}

	stepMin := int(step / time.Minute)
	slots := []string{}
	for m := start; m < end; m += stepMin {
		slots = append(slots, FormatClock(m))
	}
	return slots, nil
}

// ParseClock parses "H:MM" or "HH:MM" into minutes after midnight. "24:00"
// is accepted as an end-of-day bound.
func ParseClock(s string) (int, error) {
	bad := apperror.New(apperror.KindInvalidAvailabilityConfig, "ParseClock", "malformed time %q", s)

	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !isDigits(h) || !isDigits(m) {
		return 0, bad
	}
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	if hours > 24 || minutes > 59 {
		return 0, bad
	}
	if hours == 24 && minutes != 0 {
		return 0, bad
	}
	return hours*60 + minutes, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes after midnight as zero-padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateRecord checks every time string in rec and that start < end
// wherever both bounds are present.
func ValidateRecord(rec *models.AvailabilityRecord) error {
	const op = "availability.ValidateRecord"
	for day, entry := range rec.WeeklySchedule {
		if !day.Valid() {
			return apperror.New(apperror.KindInvalidAvailabilityConfig, op, "unknown weekday %q", day)
		}
		if err := validateWindow(entry.Start, entry.End); err != nil {
			return apperror.New(apperror.KindInvalidAvailabilityConfig, op, "%s: %v", day, err)
		}
	}
	for key, entry := range rec.SpecialDates {
		if _, err := time.Parse(DateLayout, key); err != nil {
			return apperror.New(apperror.KindInvalidAvailabilityConfig, op, "special date key %q is not YYYY-MM-DD", key)
		}
		if err := validateWindow(entry.StartTime, entry.EndTime); err != nil {
			return apperror.New(apperror.KindInvalidAvailabilityConfig, op, "%s: %v", key, err)
		}
	}
	if rec.TimeSlotDuration < 0 || rec.BufferTime < 0 {
		return apperror.New(apperror.KindInvalidAvailabilityConfig, op, "durations must not be negative")
	}
	return nil
}

func validateWindow(startStr, endStr string) error {
	var start, end int
	var err error
	if startStr != "" {
		if start, err = ParseClock(startStr); err != nil {
			return fmt.Errorf("malformed start %q", startStr)
		}
	}
	if endStr != "" {
		if end, err = ParseClock(endStr); err != nil {
			return fmt.Errorf("malformed end %q", endStr)
		}
	}
	if startStr != "" && endStr != "" && start >= end {
		return fmt.Errorf("start %s is not before end %s", startStr, endStr)
	}
	return nil
}
