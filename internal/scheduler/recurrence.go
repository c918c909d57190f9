// Package scheduler computes reminder occurrences. All calendar math runs
// in the reminder's stored timezone and the result is an absolute instant.
package scheduler

import (
	"fmt"
	"time"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// Schedule is the recurrence rule of a reminder
type Schedule struct {
	TimeOfDay  string // "HH:MM", 24-hour
	Timezone   string // IANA name
	Recurrence models.RecurrenceType
	WeeklyDays []time.Weekday // for weekly
	MonthlyDay int            // 1..31, for monthly; clamped to the month's last day
}

// NextOccurrence computes the first occurrence of s strictly after from.
// Every recurrence type advances at least one calendar day past from's day
// except once, which may still fall on from's day if the time has not
// passed yet.
func NextOccurrence(s Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Time{}, &models.InvalidParameterError{Param: "timezone", Reason: fmt.Sprintf("unknown timezone %q", s.Timezone)}
	}
	hour, minute, err := validation.ParseTimeOfDay(s.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	local := from.In(loc)
	at := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	}

	switch s.Recurrence {
	case models.RecurrenceOnce:
		t := at(local)
		if !t.After(from) {
			t = at(local.AddDate(0, 0, 1))
		}
		return t, nil

	case models.RecurrenceDaily:
		return at(local.AddDate(0, 0, 1)), nil

	case models.RecurrenceWeekdays:
		return scanForward(local, at, func(d time.Weekday) bool {
			return d != time.Saturday && d != time.Sunday
		})

	case models.RecurrenceWeekends:
		return scanForward(local, at, func(d time.Weekday) bool {
			return d == time.Saturday || d == time.Sunday
		})

	case models.RecurrenceWeekly:
		if len(s.WeeklyDays) == 0 {
			return time.Time{}, &models.InvalidParameterError{Param: "weekly_days", Reason: "required for weekly recurrence"}
		}
		want := make(map[time.Weekday]struct{}, len(s.WeeklyDays))
		for _, d := range s.WeeklyDays {
			if d < time.Sunday || d > time.Saturday {
				return time.Time{}, &models.InvalidParameterError{Param: "weekly_days", Reason: fmt.Sprintf("invalid weekday %d", d)}
			}
			want[d] = struct{}{}
		}
		return scanForward(local, at, func(d time.Weekday) bool {
			_, ok := want[d]
			return ok
		})

	case models.RecurrenceMonthly:
		if s.MonthlyDay < 1 || s.MonthlyDay > 31 {
			return time.Time{}, &models.InvalidParameterError{Param: "monthly_day", Reason: "must be between 1 and 31"}
		}
		// Jump to the next calendar month, clamping the requested day to
		// that month's last day.
		year, month := local.Year(), local.Month()+1
		first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		lastDay := first.AddDate(0, 1, -1).Day()
		day := s.MonthlyDay
		if day > lastDay {
			day = lastDay
		}
		return time.Date(first.Year(), first.Month(), day, hour, minute, 0, 0, loc), nil

	default:
		return time.Time{}, &models.InvalidParameterError{Param: "recurrence_type", Reason: fmt.Sprintf("unknown recurrence type %q", s.Recurrence)}
	}
}

// scanForward walks day-by-day starting tomorrow until match accepts the
// weekday. The scan is bounded; with at least one acceptable weekday per
// week it terminates within 7 steps.
func scanForward(local time.Time, at func(time.Time) time.Time, match func(time.Weekday) bool) (time.Time, error) {
	d := local.AddDate(0, 0, 1)
	for i := 0; i < 8; i++ {
		if match(d.Weekday()) {
			return at(d), nil
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("no matching weekday within a week")
}

// FromReminder builds the schedule of a stored reminder
func FromReminder(rem *models.Reminder) Schedule {
	return Schedule{
		TimeOfDay:  rem.TimeOfDay,
		Timezone:   rem.Timezone,
		Recurrence: rem.Recurrence,
		WeeklyDays: rem.WeeklyDays,
		MonthlyDay: rem.MonthlyDay,
	}
}
