package engine

import (
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

// ActiveDayIndex holds, per service number, the local days with at least one
// approved run. Every view reads active days from here.
type ActiveDayIndex map[string]types.DaySet

func BuildActiveDays(records []types.RunRecord, loc *time.Location) ActiveDayIndex {
	index := ActiveDayIndex{}
	for _, r := range records {
		if !r.Approved() {
			continue
		}
		days, ok := index[r.ServiceNumber]
		if !ok {
			days = types.DaySet{}
			index[r.ServiceNumber] = days
		}
		days.Add(types.DayOf(r.Date, loc))
	}
	return index
}

// Days never returns nil so callers can use Has directly.
func (idx ActiveDayIndex) Days(serviceNumber string) types.DaySet {
	if days, ok := idx[serviceNumber]; ok {
		return days
	}
	return types.DaySet{}
}

func (idx ActiveDayIndex) Count(serviceNumber string) int {
	return len(idx[serviceNumber])
}

// CountWithin counts active days that appear in days.
func (idx ActiveDayIndex) CountWithin(serviceNumber string, days []types.Day) int {
	active := idx[serviceNumber]
	n := 0
	for _, d := range days {
		if active.Has(d) {
			n++
		}
	}
	return n
}
