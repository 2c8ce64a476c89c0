package engine

import (
	"slices"
	"strings"

	"uocsclub.net/runchallenge/internal/types"
)

// Classify labels engagement over windowDays, which should be the elapsed
// window days in order. daily wins over consistent.
func Classify(active types.DaySet, windowDays []types.Day) types.Consistency {
	c := types.Consistency{}

	for _, d := range windowDays {
		if !active.Has(d) {
			c.InactiveDayCount++
		}
	}

	for i := len(windowDays) - 1; i >= 0; i-- {
		if !active.Has(windowDays[i]) {
			break
		}
		c.Streak++
	}

	switch {
	case len(windowDays) > 0 && c.InactiveDayCount == 0:
		c.Label = types.LabelDaily
	case c.Streak >= ConsistentStreak:
		c.Label = types.LabelConsistent
	default:
		c.Label = types.LabelInactive
	}

	return c
}

// ClassifyAll classifies every roster participant, including those who never
// ran, and sorts the result: daily, then consistent, then longer streak,
// fewer inactive days, name (case-insensitive) and service number.
func ClassifyAll(participants []types.Participant, index ActiveDayIndex, windowDays []types.Day) []types.ConsistencyEntry {
	out := make([]types.ConsistencyEntry, 0, len(participants))
	seen := make(map[string]bool, len(participants))

	for _, p := range participants {
		if seen[p.ServiceNumber] {
			continue
		}
		seen[p.ServiceNumber] = true
		out = append(out, types.ConsistencyEntry{
			ServiceNumber: p.ServiceNumber,
			Name:          p.Name,
			Station:       p.Station,
			Consistency:   Classify(index.Days(p.ServiceNumber), windowDays),
		})
	}

	slices.SortStableFunc(out, compareConsistency)
	return out
}

func labelOrder(l types.ConsistencyLabel) int {
	switch l {
	case types.LabelDaily:
		return 0
	case types.LabelConsistent:
		return 1
	}
	return 2
}

func compareConsistency(a, b types.ConsistencyEntry) int {
	if c := labelOrder(a.Label) - labelOrder(b.Label); c != 0 {
		return c
	}
	if a.Streak != b.Streak {
		return b.Streak - a.Streak
	}
	if a.InactiveDayCount != b.InactiveDayCount {
		return a.InactiveDayCount - b.InactiveDayCount
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ServiceNumber, b.ServiceNumber)
}
