package model

import "fmt"

// Period selects a calendar window relative to a reference time.
type Period string

const (
	PeriodThisWeek  Period = "week"
	PeriodThisMonth Period = "month"
	PeriodThisYear  Period = "year"
	PeriodAllTime   Period = "all"
)

// ParsePeriod accepts the canonical names plus the "this_" spellings used by
// older clients. An empty string means all time.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "week", "this_week", "thisWeek":
		return PeriodThisWeek, nil
	case "month", "this_month", "thisMonth":
		return PeriodThisMonth, nil
	case "year", "this_year", "thisYear":
		return PeriodThisYear, nil
	case "", "all", "all_time", "allTime":
		return PeriodAllTime, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

type WastageStats struct {
	Total     int `json:"total"`
	ThisMonth int `json:"this_month"`
	ThisWeek  int `json:"this_week"`
}
