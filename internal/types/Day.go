package types

import (
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Day is a calendar day in the challenge zone, formatted as YYYY-MM-DD so
// lexical order is chronological order.
type Day string

func DayOf(t time.Time, loc *time.Location) Day {
	if loc != nil {
		t = t.In(loc)
	}
	return Day(t.Format(DayLayout))
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return Day(t.Format(DayLayout)), nil
}

// Time returns midnight of the day in UTC.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(DayLayout))
}

func (d Day) IsZero() bool {
	return len(d) == 0
}

func (d Day) String() string {
	return string(d)
}

type DaySet map[Day]struct{}

func (s DaySet) Add(d Day) {
	s[d] = struct{}{}
}

func (s DaySet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}
