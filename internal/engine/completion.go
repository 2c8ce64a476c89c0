package engine

import (
	"slices"
	"strings"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

// FindCompletion walks one participant's approved runs in date order and
// stops at the first run whose cumulative distance reaches thresholdKm.
// Nothing after that run is accumulated or logged. ActiveDaysToComplete is
// the number of distinct days seen up to the crossing run. A nil result means
// the threshold was never reached.
func FindCompletion(records []types.RunRecord, thresholdKm float64, loc *time.Location) (*types.Completion, error) {
	if err := validateDistanceThreshold(thresholdKm); err != nil {
		return nil, err
	}

	runs := approvedInOrder(records)
	seen := types.DaySet{}
	cumulative := 0.0
	steps := []types.CompletionStep{}

	for _, r := range runs {
		day := types.DayOf(r.Date, loc)
		cumulative = RoundKm(cumulative + r.DistanceKm)
		seen.Add(day)
		steps = append(steps, types.CompletionStep{
			Date:         day,
			DistanceKm:   r.DistanceKm,
			CumulativeKm: cumulative,
		})

		if cumulative >= thresholdKm {
			return &types.Completion{
				CompletionDate:       day,
				ActiveDaysToComplete: len(seen),
				CumulativeLog:        steps,
			}, nil
		}
	}

	return nil, nil
}

// Journey is the completion audit for a single service number.
func Journey(records []types.RunRecord, serviceNumber string, thresholdKm float64, loc *time.Location) (*types.Completion, error) {
	serviceNumber = strings.TrimSpace(serviceNumber)
	own := make([]types.RunRecord, 0)
	for _, r := range records {
		if r.ServiceNumber == serviceNumber {
			own = append(own, r)
		}
	}
	return FindCompletion(own, thresholdKm, loc)
}

// Finishers lists everyone whose approved distance reached thresholdKm,
// ordered by completion date. Equal dates keep registration order; runners
// missing from the roster come after registered ones, by service number.
func Finishers(records []types.RunRecord, participants []types.Participant, thresholdKm float64, loc *time.Location) ([]types.Finisher, error) {
	if err := validateDistanceThreshold(thresholdKm); err != nil {
		return nil, err
	}

	byRunner := map[string][]types.RunRecord{}
	for _, r := range records {
		if r.Approved() {
			byRunner[r.ServiceNumber] = append(byRunner[r.ServiceNumber], r)
		}
	}

	candidates := make([]types.Finisher, 0, len(byRunner))
	registered := make(map[string]bool, len(participants))
	for _, p := range participants {
		if registered[p.ServiceNumber] {
			continue
		}
		registered[p.ServiceNumber] = true
		candidates = append(candidates, types.Finisher{
			ServiceNumber: p.ServiceNumber,
			Name:          p.Name,
			Station:       p.Station,
		})
	}

	orphans := []string{}
	for sn := range byRunner {
		if !registered[sn] {
			orphans = append(orphans, sn)
		}
	}
	slices.Sort(orphans)
	for _, sn := range orphans {
		first := byRunner[sn][0]
		candidates = append(candidates, types.Finisher{
			ServiceNumber: sn,
			Name:          first.Name,
			Station:       first.Station,
		})
	}

	finishers := []types.Finisher{}
	for _, c := range candidates {
		completion, err := FindCompletion(byRunner[c.ServiceNumber], thresholdKm, loc)
		if err != nil {
			return nil, err
		}
		if completion == nil {
			continue
		}
		c.Completion = *completion
		finishers = append(finishers, c)
	}

	slices.SortStableFunc(finishers, func(a, b types.Finisher) int {
		return strings.Compare(string(a.CompletionDate), string(b.CompletionDate))
	})
	for i := range finishers {
		finishers[i].Position = i + 1
	}

	return finishers, nil
}

func approvedInOrder(records []types.RunRecord) []types.RunRecord {
	runs := make([]types.RunRecord, 0, len(records))
	for _, r := range records {
		if r.Approved() {
			runs = append(runs, r)
		}
	}
	slices.SortStableFunc(runs, func(a, b types.RunRecord) int {
		return a.Date.Compare(b.Date)
	})
	return runs
}
