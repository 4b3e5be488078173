// Package adherence walks purchase history and emits medication reminders:
// daily while a course runs, one completion note the day after it ends and a
// final checkup three days after that.
package adherence

import (
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
)

// CheckupDelay is the gap in days between course completion and the checkup.
const CheckupDelay = 3

// Due reports which reminder, if any, the purchase owes on today. It only
// looks at persisted fields so a restarted scan reaches the same answer.
func Due(p models.Purchase, today string) (enums.ReminderKind, bool, error) {
	if p.Completed || p.CourseDays <= 0 {
		return "", false, nil
	}
	if p.LastReminderSent != nil && *p.LastReminderSent >= today {
		return "", false, nil
	}

	elapsed, err := clock.DaysBetween(p.PurchaseDate, today)
	if err != nil {
		return "", false, err
	}

	course := p.CourseDays
	switch {
	case elapsed >= 0 && elapsed <= course:
		return enums.ReminderKindDaily, true, nil
	case elapsed == course+1:
		return enums.ReminderKindCompletion, true, nil
	case elapsed == course+CheckupDelay:
		return enums.ReminderKindCheckup, true, nil
	default:
		return "", false, nil
	}
}

// scanWindowStart is the oldest course end date that can still owe a
// reminder on today.
func scanWindowStart(today string) (string, error) {
	return clock.AddDays(today, -CheckupDelay)
}
