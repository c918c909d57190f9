package validation

import (
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain title unchanged",
			input: "Groceries",
			want:  "Groceries",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  Groceries \t",
			want:  "Groceries",
		},
		{
			name:  "control characters stripped",
			input: "Gro\x00cer\x1bies",
			want:  "Groceries",
		},
		{
			name:  "interior newline stripped",
			input: "line one\nline two",
			want:  "line oneline two",
		},
		{
			name:  "unicode preserved",
			input: "  Épicerie 🛒  ",
			want:  "Épicerie 🛒",
		},
		{
			name:  "whitespace only becomes empty",
			input: " \t\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeTitle(tt.input); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleLength(t *testing.T) {
	t.Parallel()

	long := make([]rune, 201)
	for i := range long {
		long[i] = 'a'
	}
	exact := string(long[:200])

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "single character", input: "a"},
		{name: "exactly 200 runes", input: exact},
		{name: "201 runes rejected", input: string(long), wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := TitleLength(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("TitleLength() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTitleLengthCountsRunes(t *testing.T) {
	t.Parallel()

	// 200 multibyte runes exceed 200 bytes but are still a legal title
	title := ""
	for i := 0; i < 200; i++ {
		title += "é"
	}
	if err := TitleLength(title); err != nil {
		t.Errorf("TitleLength() should count runes, not bytes: %v", err)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantHour int
		wantMin  int
		wantErr  bool
	}{
		{name: "morning", input: "09:30", wantHour: 9, wantMin: 30},
		{name: "midnight", input: "00:00", wantHour: 0, wantMin: 0},
		{name: "last minute", input: "23:59", wantHour: 23, wantMin: 59},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "missing leading zero", input: "9:30", wantErr: true},
		{name: "not a time", input: "soon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hour, minute, err := ParseTimeOfDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if hour != tt.wantHour || minute != tt.wantMin {
				t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d",
					tt.input, hour, minute, tt.wantHour, tt.wantMin)
			}
		})
	}
}

func TestCustomValidators(t *testing.T) {
	t.Parallel()

	type sample struct {
		Recurrence string `validate:"omitempty,recurrence_type"`
		Status     string `validate:"omitempty,reminder_status"`
		TimeOfDay  string `validate:"omitempty,time_of_day"`
		Timezone   string `validate:"omitempty,iana_timezone"`
		NodeID     string `validate:"omitempty,node_id"`
	}

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{name: "all empty", input: sample{}},
		{name: "valid recurrence", input: sample{Recurrence: "weekdays"}},
		{name: "invalid recurrence", input: sample{Recurrence: "fortnightly"}, wantErr: true},
		{name: "valid status", input: sample{Status: "cancelled"}},
		{name: "invalid status", input: sample{Status: "paused"}, wantErr: true},
		{name: "valid time of day", input: sample{TimeOfDay: "08:15"}},
		{name: "invalid time of day", input: sample{TimeOfDay: "8am"}, wantErr: true},
		{name: "valid timezone", input: sample{Timezone: "America/New_York"}},
		{name: "invalid timezone", input: sample{Timezone: "Mars/Olympus"}, wantErr: true},
		{name: "valid node id", input: sample{NodeID: "note:12"}},
		{name: "edge id is not a graph node", input: sample{NodeID: "edge:1"}, wantErr: true},
		{name: "malformed node id", input: sample{NodeID: "note12"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate.Struct(%+v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
