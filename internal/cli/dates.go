// Package cli holds small helpers shared by commands.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MeetingTimeLayout is the wire format the backend expects for
// meeting_datetime.
const MeetingTimeLayout = "2006-01-02 15:04"

// Matches: "30m", "2h", "1d", "1w" (relative future)
var relativeFutureRegex = regexp.MustCompile(`^(?:in\s+)?(\d+)(w|d|h|m)$`)

// Matches a trailing clock time: "14:00", "9:30"
var clockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseMeetingTime parses human-friendly meeting time expressions into a
// concrete time. Supported forms:
//
//	"2026-09-02 14:00"        exact wire format
//	"tomorrow 14:00"          day word plus clock time
//	"monday 9:30"             weekday plus clock time
//	"next tue 10:00"
//	"2h", "3d", "in 1w"       relative to now
//	RFC3339
func ParseMeetingTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty meeting time")
	}

	if t, err := time.ParseInLocation(MeetingTimeLayout, raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	input := strings.ToLower(raw)

	if matches := relativeFutureRegex.FindStringSubmatch(input); len(matches) == 3 {
		value, err := strconv.Atoi(matches[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid meeting time %q", raw)
		}
		return applyRelative(now, value, matches[2])
	}

	// Day expression plus clock time, e.g. "tomorrow 14:00" or "next tue 9:30".
	fields := strings.Fields(input)
	if len(fields) >= 2 {
		clock := fields[len(fields)-1]
		if m := clockRegex.FindStringSubmatch(clock); len(m) == 3 {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			if hour > 23 || minute > 59 {
				return time.Time{}, fmt.Errorf("invalid clock time %q", clock)
			}
			day, err := parseDay(strings.Join(fields[:len(fields)-1], " "), now)
			if err != nil {
				return time.Time{}, err
			}
			return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid meeting time %q (use %q, a relative offset like 2h, or a day plus time like 'tomorrow 14:00')", raw, MeetingTimeLayout)
}

// FormatMeetingTime renders a time in the backend wire format.
func FormatMeetingTime(t time.Time) string {
	return t.Format(MeetingTimeLayout)
}

func parseDay(expr string, now time.Time) (time.Time, error) {
	switch expr {
	case "today":
		return startOfDay(now), nil
	case "tomorrow":
		return startOfDay(now).AddDate(0, 0, 1), nil
	}
	if t, ok := parseWeekday(expr, now); ok {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", expr, now.Location()); err == nil {
		return startOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid day expression %q", expr)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(expr)
	if input == "" {
		return time.Time{}, false
	}

	next := false
	if strings.HasPrefix(input, "next ") {
		next = true
		input = strings.TrimSpace(strings.TrimPrefix(input, "next "))
	} else if strings.HasPrefix(input, "this ") {
		input = strings.TrimSpace(strings.TrimPrefix(input, "this "))
	}

	weekday, ok := weekdayMap[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(weekday) - int(base.Weekday()) + 7) % 7
	if next && delta == 0 {
		delta = 7
	}

	return base.AddDate(0, 0, delta), true
}

var weekdayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"weds":      time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func applyRelative(now time.Time, value int, unit string) (time.Time, error) {
	switch unit {
	case "w":
		return now.Add(time.Duration(value) * 7 * 24 * time.Hour), nil
	case "d":
		return now.Add(time.Duration(value) * 24 * time.Hour), nil
	case "h":
		return now.Add(time.Duration(value) * time.Hour), nil
	case "m":
		return now.Add(time.Duration(value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("invalid relative time unit %q", unit)
	}
}
