package wastage

import (
	"time"

	"github.com/dukerupert/pantry/internal/model"
)

// InPeriod reports whether t falls in the same calendar period as asOf,
// evaluated in loc. Weeks are ISO weeks and must also match the ISO year;
// months must match month and year.
func InPeriod(t, asOf time.Time, period model.Period, loc *time.Location) bool {
	t, asOf = t.In(loc), asOf.In(loc)
	switch period {
	case model.PeriodThisWeek:
		ty, tw := t.ISOWeek()
		ay, aw := asOf.ISOWeek()
		return ty == ay && tw == aw
	case model.PeriodThisMonth:
		return t.Year() == asOf.Year() && t.Month() == asOf.Month()
	case model.PeriodThisYear:
		return t.Year() == asOf.Year()
	case model.PeriodAllTime:
		return true
	}
	return false
}
