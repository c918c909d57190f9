package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/memograph/memograph/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators for domain formats
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("recurrence_type", validateRecurrenceType); err != nil {
		panic(fmt.Sprintf("failed to register recurrence_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("reminder_status", validateReminderStatus); err != nil {
		panic(fmt.Sprintf("failed to register reminder_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("iana_timezone", validateTimezone); err != nil {
		panic(fmt.Sprintf("failed to register iana_timezone validator: %v", err))
	}
	if err := Validate.RegisterValidation("node_id", validateNodeID); err != nil {
		panic(fmt.Sprintf("failed to register node_id validator: %v", err))
	}
}

// validateRecurrenceType validates that a string is a valid RecurrenceType
// enum value
func validateRecurrenceType(fl validator.FieldLevel) bool {
	switch models.RecurrenceType(fl.Field().String()) {
	case models.RecurrenceOnce, models.RecurrenceDaily, models.RecurrenceWeekdays,
		models.RecurrenceWeekends, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// validateReminderStatus validates that a string is a valid ReminderStatus
// enum value
func validateReminderStatus(fl validator.FieldLevel) bool {
	switch models.ReminderStatus(fl.Field().String()) {
	case models.ReminderStatusActive, models.ReminderStatusCompleted, models.ReminderStatusCancelled:
		return true
	default:
		return false
	}
}

// validateTimeOfDay validates a 24-hour "HH:MM" string
func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRe.MatchString(fl.Field().String())
}

// validateTimezone validates an IANA timezone name by loading it
func validateTimezone(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// validateNodeID validates the "<kind>:<seq>" identifier format for graph
// node kinds
func validateNodeID(fl validator.FieldLevel) bool {
	id, err := models.ParseID(fl.Field().String())
	if err != nil {
		return false
	}
	return id.Kind.IsGraphNode()
}

// SanitizeTitle sanitizes a title by trimming whitespace and removing
// control characters
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)

	var sanitized strings.Builder
	for _, r := range title {
		if unicode.IsControl(r) {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// TitleLength checks the 1..200 title rule after sanitization and reports
// a violation as an *models.InvalidParameterError
func TitleLength(title string) error {
	n := len([]rune(title))
	if n < 1 {
		return &models.InvalidParameterError{Param: "title", Reason: "must not be empty"}
	}
	if n > 200 {
		return &models.InvalidParameterError{Param: "title", Reason: "must be at most 200 characters"}
	}
	return nil
}

// ParseTimeOfDay splits an "HH:MM" string into hour and minute
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if !timeOfDayRe.MatchString(s) {
		return 0, 0, &models.InvalidParameterError{Param: "time_of_day", Reason: "must be HH:MM in 24-hour time"}
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, &models.InvalidParameterError{Param: "time_of_day", Reason: "must be HH:MM in 24-hour time"}
	}
	return hour, minute, nil
}
