package engine

import (
	"sort"

	"uocsclub.net/runchallenge/internal/types"
)

// AggregateRunners folds approved runs into one RunnerTotals per roster
// participant, in roster order. Runs for service numbers missing from the
// roster are kept under synthetic unregistered entries appended after the
// roster, sorted by service number.
func AggregateRunners(records []types.RunRecord, participants []types.Participant, index ActiveDayIndex) []types.RunnerTotals {
	totals := make([]types.RunnerTotals, 0, len(participants))
	position := make(map[string]int, len(participants))

	for _, p := range participants {
		if _, dup := position[p.ServiceNumber]; dup {
			continue
		}
		position[p.ServiceNumber] = len(totals)
		totals = append(totals, types.RunnerTotals{
			ServiceNumber: p.ServiceNumber,
			Name:          p.Name,
			Station:       p.Station,
			Registered:    true,
		})
	}

	orphans := []types.RunnerTotals{}
	orphanPosition := map[string]int{}

	for _, r := range records {
		if !r.Approved() {
			continue
		}

		var entry *types.RunnerTotals
		if i, ok := position[r.ServiceNumber]; ok {
			entry = &totals[i]
		} else {
			i, ok := orphanPosition[r.ServiceNumber]
			if !ok {
				i = len(orphans)
				orphanPosition[r.ServiceNumber] = i
				orphans = append(orphans, types.RunnerTotals{
					ServiceNumber: r.ServiceNumber,
					Name:          r.Name,
					Station:       r.Station,
				})
			}
			entry = &orphans[i]
		}

		entry.TotalDistanceKm = RoundKm(entry.TotalDistanceKm + r.DistanceKm)
		entry.RunCount++
	}

	sort.SliceStable(orphans, func(i, j int) bool {
		return orphans[i].ServiceNumber < orphans[j].ServiceNumber
	})
	totals = append(totals, orphans...)

	for i := range totals {
		totals[i].ActiveDayCount = index.Count(totals[i].ServiceNumber)
	}

	return totals
}

// CountOrphans counts entries that have runs but no roster registration.
func CountOrphans(totals []types.RunnerTotals) int {
	n := 0
	for _, t := range totals {
		if !t.Registered {
			n++
		}
	}
	return n
}
