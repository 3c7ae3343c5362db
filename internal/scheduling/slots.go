package scheduling

import (
	"fmt"
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
	minutesDay  = 24 * 60
)

// ParseClock converts an "HH:MM" label into minutes after midnight.
func ParseClock(s string) (int, bool) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots lists the "HH:MM" start labels between start and end, one every
// durationMinutes. A slot is only produced when it fits entirely before end.
// Non-positive durations, start >= end and malformed clocks yield an empty slice.
func GenerateSlots(start, end string, durationMinutes int) []string {
	slots := []string{}
	if durationMinutes <= 0 {
		return slots
	}
	from, ok := ParseClock(start)
	if !ok {
		return slots
	}
	to, ok := ParseClock(end)
	if !ok || from >= to {
		return slots
	}
	for m := from; m+durationMinutes <= to && m < minutesDay; m += durationMinutes {
		slots = append(slots, FormatClock(m))
	}
	return slots
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, loc)
}

// CombineDateTime builds the timestamp of a slot from its date and clock labels.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, invalid("date must use the YYYY-MM-DD format")
	}
	minutes, ok := ParseClock(clock)
	if !ok {
		return time.Time{}, invalid("time must use the HH:MM format")
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}
