package service

import (
	"time"

	"github.com/kormoapp/kormo/internal/domain"
)

// IsDueOn reports whether a recurring template is due on the given calendar
// date. DAILY templates are due every day. WEEKLY templates are due when the
// date's weekday index (0=Sunday..6=Saturday) is one of the template's
// recurrence days; with no days selected they are never due. Unknown or
// missing recurrence types are never due. Time-of-day is ignored.
func IsDueOn(template *domain.Task, date time.Time) bool {
	if template.RecurrenceType == nil {
		return false
	}

	switch *template.RecurrenceType {
	case domain.RecurrenceDaily:
		return true
	case domain.RecurrenceWeekly:
		weekday := int(date.Weekday())
		for _, day := range template.RecurrenceDays {
			if day == weekday {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
