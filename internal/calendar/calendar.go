// Package calendar holds the day-counting rules used to charge leave
// against an employee balance. Everything here is pure date arithmetic;
// no clock reads, no side effects.
package calendar

import (
	"fmt"
	"time"
)

// Policy selects how many allowance days a date range consumes.
type Policy string

const (
	// PolicyBusinessDays counts weekdays only, excluding the holiday set.
	PolicyBusinessDays Policy = "business_days"
	// PolicyCalendarDays counts every day in the range, both endpoints included.
	PolicyCalendarDays Policy = "calendar_days"
)

// ParsePolicy maps a config value to a Policy. Empty input defaults to
// business days, which is what the deployed system charges.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", string(PolicyBusinessDays):
		return PolicyBusinessDays, nil
	case string(PolicyCalendarDays):
		return PolicyCalendarDays, nil
	default:
		return "", fmt.Errorf("unknown leave day policy: %q", s)
	}
}

const dayKeyLayout = "2006-01-02"

// HolidaySet is a day-granular membership set. Time-of-day and timezone
// offsets on the stored dates are ignored.
type HolidaySet map[string]struct{}

func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d.Format(dayKeyLayout)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(day time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[day.Format(dayKeyLayout)]
	return ok
}

// ChargeableDays returns how many allowance days the inclusive range
// [start, end] consumes under the given policy.
//
// Business days: iterates every date, skipping Saturdays, Sundays and
// holidays; an inverted range yields 0. Calendar days: (end-start)+1,
// which goes zero or negative on an inverted range — callers reject
// any result <= 0 as an invalid range.
func ChargeableDays(start, end time.Time, holidays HolidaySet, policy Policy) int {
	if policy == PolicyCalendarDays {
		return int(end.Sub(start).Hours()/24) + 1
	}

	days := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		if holidays.Contains(current) {
			continue
		}
		days++
	}
	return days
}

// ReturnDate is the first day back at work after a leave range.
func ReturnDate(end time.Time) time.Time {
	return end.AddDate(0, 0, 1)
}

const displayLayout = "02/01/2006"

// FormatDisplay renders a date in the DD/MM/YYYY form used by the
// notification payload contract.
func FormatDisplay(t time.Time) string {
	return t.Format(displayLayout)
}
