package engine

import (
	"math"
	"slices"
	"strings"

	"uocsclub.net/runchallenge/internal/types"
)

// runnerProgress is the percentage of the challenge completed, limited by
// whichever of distance and active days is further behind. th must already
// be validated.
func runnerProgress(totalKm float64, activeDays int, th Thresholds) float64 {
	distance := math.Min(totalKm/th.DistanceKm, 1)
	days := math.Min(float64(activeDays)/float64(th.ActiveDays), 1)
	return math.Min(distance, days) * 100
}

type stationTally struct {
	score    types.StationScore
	progress []float64
}

// ScoreStations averages the best TopSlots progress scores of each station's
// roster, counting empty slots as zero. Only active days inside the elapsed
// window count. Runners active on every elapsed day get AttendanceBonus,
// capped at 100. Runners missing from the roster are not counted.
func ScoreStations(
	participants []types.Participant,
	totals []types.RunnerTotals,
	index ActiveDayIndex,
	window types.ChallengeWindow,
	today types.Day,
	th Thresholds,
) ([]types.StationScore, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	elapsed := ElapsedDays(window, today)

	byRunner := make(map[string]types.RunnerTotals, len(totals))
	for _, t := range totals {
		if t.Registered {
			byRunner[t.ServiceNumber] = t
		}
	}

	tallies := map[string]*stationTally{}
	order := []string{}
	counted := make(map[string]bool, len(participants))

	for _, p := range participants {
		if counted[p.ServiceNumber] {
			continue
		}
		counted[p.ServiceNumber] = true

		tally, ok := tallies[p.Station]
		if !ok {
			tally = &stationTally{score: types.StationScore{Station: p.Station}}
			tallies[p.Station] = tally
			order = append(order, p.Station)
		}

		runner := byRunner[p.ServiceNumber]
		activeDays := index.CountWithin(p.ServiceNumber, elapsed)

		progress := runnerProgress(runner.TotalDistanceKm, activeDays, th)
		if len(elapsed) > 0 && activeDays == len(elapsed) {
			progress = math.Min(progress*th.AttendanceBonus, 100)
		}

		tally.score.RunnerCount++
		tally.score.TotalDistanceKm = RoundKm(tally.score.TotalDistanceKm + runner.TotalDistanceKm)
		tally.progress = append(tally.progress, progress)
		if runner.TotalDistanceKm >= th.DistanceKm && activeDays >= th.ActiveDays {
			tally.score.FinisherCount++
		}
	}

	scores := make([]types.StationScore, 0, len(order))
	for _, station := range order {
		tally := tallies[station]
		tally.score.PerformancePercent = topSlotAverage(tally.progress, th.TopSlots)
		scores = append(scores, tally.score)
	}

	slices.SortStableFunc(scores, func(a, b types.StationScore) int {
		if a.PerformancePercent != b.PerformancePercent {
			if a.PerformancePercent > b.PerformancePercent {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Station, b.Station)
	})

	return scores, nil
}

func topSlotAverage(progress []float64, slots int) float64 {
	best := slices.Clone(progress)
	slices.SortFunc(best, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	sum := 0.0
	for i := 0; i < slots && i < len(best); i++ {
		sum += best[i]
	}
	return math.Min(RoundKm(sum/float64(slots)), 100)
}
