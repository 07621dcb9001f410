package domain

import (
	"time"

	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
)

// PeriodStart returns the beginning of the billing period containing asOf:
// the first of the calendar month for MONTHLY partners, the ISO week's
// Monday for WEEKLY partners. All boundaries are UTC.
func PeriodStart(cycle partnerdomain.BillingCycle, asOf time.Time) time.Time {
	asOf = asOf.UTC()
	if cycle == partnerdomain.BillingCycleWeekly {
		daysSinceMonday := (int(asOf.Weekday()) + 6) % 7
		day := asOf.AddDate(0, 0, -daysSinceMonday)
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
}
