package scheduler

import (
	"testing"
	"time"

	"github.com/memograph/memograph/internal/models"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

func TestNextOccurrenceOnce(t *testing.T) {
	t.Parallel()

	ny := mustLoad(t, "America/New_York")

	t.Run("same day when time has not passed", func(t *testing.T) {
		t.Parallel()

		// Monday 2025-06-02 08:00 local, reminder at 09:30
		from := time.Date(2025, 6, 2, 8, 0, 0, 0, ny)
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "09:30",
			Timezone:   "America/New_York",
			Recurrence: models.RecurrenceOnce,
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 2, 9, 30, 0, 0, ny)
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})

	t.Run("next day when time has passed", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 6, 2, 10, 0, 0, 0, ny)
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "09:30",
			Timezone:   "America/New_York",
			Recurrence: models.RecurrenceOnce,
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 3, 9, 30, 0, 0, ny)
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})

	t.Run("exactly at the time rolls to next day", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 6, 2, 9, 30, 0, 0, ny)
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "09:30",
			Timezone:   "America/New_York",
			Recurrence: models.RecurrenceOnce,
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 3, 9, 30, 0, 0, ny)
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceDaily(t *testing.T) {
	t.Parallel()

	ny := mustLoad(t, "America/New_York")

	// Daily always advances one day even if today's time has not passed
	from := time.Date(2025, 6, 2, 1, 0, 0, 0, ny)
	got, err := NextOccurrence(Schedule{
		TimeOfDay:  "07:00",
		Timezone:   "America/New_York",
		Recurrence: models.RecurrenceDaily,
	}, from)
	if err != nil {
		t.Fatalf("NextOccurrence() error: %v", err)
	}
	want := time.Date(2025, 6, 3, 7, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v, want %v", got, want)
	}
}

func TestNextOccurrenceWeekdaysAndWeekends(t *testing.T) {
	t.Parallel()

	utc := time.UTC

	tests := []struct {
		name       string
		recurrence models.RecurrenceType
		from       time.Time
		want       time.Time
	}{
		{
			name:       "weekdays from friday skips to monday",
			recurrence: models.RecurrenceWeekdays,
			from:       time.Date(2025, 6, 6, 12, 0, 0, 0, utc), // Friday
			want:       time.Date(2025, 6, 9, 9, 0, 0, 0, utc),  // Monday
		},
		{
			name:       "weekdays from sunday lands on monday",
			recurrence: models.RecurrenceWeekdays,
			from:       time.Date(2025, 6, 8, 12, 0, 0, 0, utc), // Sunday
			want:       time.Date(2025, 6, 9, 9, 0, 0, 0, utc),
		},
		{
			name:       "weekends from monday skips to saturday",
			recurrence: models.RecurrenceWeekends,
			from:       time.Date(2025, 6, 2, 12, 0, 0, 0, utc), // Monday
			want:       time.Date(2025, 6, 7, 9, 0, 0, 0, utc),  // Saturday
		},
		{
			name:       "weekends from saturday lands on sunday",
			recurrence: models.RecurrenceWeekends,
			from:       time.Date(2025, 6, 7, 12, 0, 0, 0, utc), // Saturday
			want:       time.Date(2025, 6, 8, 9, 0, 0, 0, utc),  // Sunday
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NextOccurrence(Schedule{
				TimeOfDay:  "09:00",
				Timezone:   "UTC",
				Recurrence: tt.recurrence,
			}, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceWeekly(t *testing.T) {
	t.Parallel()

	utc := time.UTC

	t.Run("wednesday from monday", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 6, 2, 12, 0, 0, 0, utc) // Monday
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "10:00",
			Timezone:   "UTC",
			Recurrence: models.RecurrenceWeekly,
			WeeklyDays: []time.Weekday{time.Wednesday},
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 4, 10, 0, 0, 0, utc)
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})

	t.Run("same weekday advances a full week", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 6, 4, 12, 0, 0, 0, utc) // Wednesday
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "10:00",
			Timezone:   "UTC",
			Recurrence: models.RecurrenceWeekly,
			WeeklyDays: []time.Weekday{time.Wednesday},
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 11, 10, 0, 0, 0, utc)
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})

	t.Run("nearest of several days wins", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 6, 2, 12, 0, 0, 0, utc) // Monday
		got, err := NextOccurrence(Schedule{
			TimeOfDay:  "10:00",
			Timezone:   "UTC",
			Recurrence: models.RecurrenceWeekly,
			WeeklyDays: []time.Weekday{time.Friday, time.Tuesday},
		}, from)
		if err != nil {
			t.Fatalf("NextOccurrence() error: %v", err)
		}
		want := time.Date(2025, 6, 3, 10, 0, 0, 0, utc) // Tuesday
		if !got.Equal(want) {
			t.Errorf("NextOccurrence() = %v, want %v", got, want)
		}
	})

	t.Run("empty weekly days rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NextOccurrence(Schedule{
			TimeOfDay:  "10:00",
			Timezone:   "UTC",
			Recurrence: models.RecurrenceWeekly,
		}, time.Now())
		if err == nil {
			t.Error("NextOccurrence() should reject weekly recurrence without days")
		}
	})
}

func TestNextOccurrenceMonthly(t *testing.T) {
	t.Parallel()

	utc := time.UTC

	tests := []struct {
		name       string
		monthlyDay int
		from       time.Time
		want       time.Time
	}{
		{
			name:       "mid-month day",
			monthlyDay: 15,
			from:       time.Date(2025, 6, 20, 12, 0, 0, 0, utc),
			want:       time.Date(2025, 7, 15, 8, 0, 0, 0, utc),
		},
		{
			name:       "always jumps to next month even before this month's day",
			monthlyDay: 25,
			from:       time.Date(2025, 6, 10, 12, 0, 0, 0, utc),
			want:       time.Date(2025, 7, 25, 8, 0, 0, 0, utc),
		},
		{
			name:       "day 31 clamps to shorter month",
			monthlyDay: 31,
			from:       time.Date(2025, 5, 31, 12, 0, 0, 0, utc),
			want:       time.Date(2025, 6, 30, 8, 0, 0, 0, utc),
		},
		{
			name:       "day 30 clamps to february",
			monthlyDay: 30,
			from:       time.Date(2025, 1, 31, 12, 0, 0, 0, utc),
			want:       time.Date(2025, 2, 28, 8, 0, 0, 0, utc),
		},
		{
			name:       "december rolls into january",
			monthlyDay: 5,
			from:       time.Date(2025, 12, 10, 12, 0, 0, 0, utc),
			want:       time.Date(2026, 1, 5, 8, 0, 0, 0, utc),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NextOccurrence(Schedule{
				TimeOfDay:  "08:00",
				Timezone:   "UTC",
				Recurrence: models.RecurrenceMonthly,
				MonthlyDay: tt.monthlyDay,
			}, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("day out of range rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NextOccurrence(Schedule{
			TimeOfDay:  "08:00",
			Timezone:   "UTC",
			Recurrence: models.RecurrenceMonthly,
			MonthlyDay: 32,
		}, time.Now())
		if err == nil {
			t.Error("NextOccurrence() should reject monthly day 32")
		}
	})
}

func TestNextOccurrenceTimezoneMath(t *testing.T) {
	t.Parallel()

	tokyo := mustLoad(t, "Asia/Tokyo")

	// 2025-06-02 23:00 UTC is already 2025-06-03 08:00 in Tokyo, so a
	// daily 09:00 Tokyo reminder lands on June 4 Tokyo time.
	from := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	got, err := NextOccurrence(Schedule{
		TimeOfDay:  "09:00",
		Timezone:   "Asia/Tokyo",
		Recurrence: models.RecurrenceDaily,
	}, from)
	if err != nil {
		t.Fatalf("NextOccurrence() error: %v", err)
	}
	want := time.Date(2025, 6, 4, 9, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v, want %v", got.In(tokyo), want)
	}
}

func TestNextOccurrenceInvalidInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule Schedule
	}{
		{
			name:     "unknown timezone",
			schedule: Schedule{TimeOfDay: "09:00", Timezone: "Mars/Olympus", Recurrence: models.RecurrenceDaily},
		},
		{
			name:     "bad time of day",
			schedule: Schedule{TimeOfDay: "9am", Timezone: "UTC", Recurrence: models.RecurrenceDaily},
		},
		{
			name:     "unknown recurrence",
			schedule: Schedule{TimeOfDay: "09:00", Timezone: "UTC", Recurrence: "fortnightly"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NextOccurrence(tt.schedule, time.Now()); err == nil {
				t.Error("NextOccurrence() expected error")
			}
		})
	}
}
