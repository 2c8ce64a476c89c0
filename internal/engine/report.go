package engine

import (
	"fmt"

	"uocsclub.net/runchallenge/internal/types"
)

// Report is every view of one snapshot, computed in a single pass so that
// all screens and exports show the same numbers.
type Report struct {
	Today         types.Day                          `json:"today"`
	Window        types.ChallengeWindow              `json:"window"`
	ElapsedDays   int                                `json:"elapsedDays"`
	DaysRemaining int                                `json:"daysRemaining"`
	Leaderboard   []types.Ranked[types.RunnerTotals] `json:"leaderboard"`
	Stations      []types.Ranked[types.StationScore] `json:"stations"`
	Finishers     []types.Finisher                   `json:"finishers"`
	Consistency   []types.ConsistencyEntry           `json:"consistency"`
	Diagnostics   Diagnostics                        `json:"diagnostics"`

	config Config
	runs   []types.RunRecord
}

// Compute runs the whole pipeline over a snapshot. It only fails on a bad
// Config; bad data is repaired or skipped and shows up in Diagnostics.
func Compute(snapshot types.Snapshot, cfg Config, today types.Day) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := types.ParseDay(string(today)); err != nil {
		return nil, fmt.Errorf("invalid report day %q: %w", today, err)
	}

	normalizer := NewNormalizer(cfg.Location, cfg.Stations)
	runs, diag := normalizer.Runs(snapshot.Runs)
	participants, rosterDiag := normalizer.Participants(snapshot.Participants)
	diag.merge(rosterDiag)

	index := BuildActiveDays(runs, cfg.Location)
	totals := AggregateRunners(runs, participants, index)
	diag.OrphanRunners = CountOrphans(totals)

	stations, err := ScoreStations(participants, totals, index, cfg.Window, today, cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	finishers, err := Finishers(runs, participants, cfg.Thresholds.DistanceKm, cfg.Location)
	if err != nil {
		return nil, err
	}

	elapsed := ElapsedDays(cfg.Window, today)

	return &Report{
		Today:         today,
		Window:        cfg.Window,
		ElapsedDays:   len(elapsed),
		DaysRemaining: DaysRemaining(cfg.Window, today),
		Leaderboard:   RankRunners(totals),
		Stations:      RankStations(stations),
		Finishers:     finishers,
		Consistency:   ClassifyAll(participants, index, elapsed),
		Diagnostics:   diag,
		config:        cfg,
		runs:          runs,
	}, nil
}

// Journey returns the completion audit for one runner, or nil when that
// runner has not reached the distance threshold.
func (r *Report) Journey(serviceNumber string) (*types.Completion, error) {
	return Journey(r.runs, serviceNumber, r.config.Thresholds.DistanceKm, r.config.Location)
}
