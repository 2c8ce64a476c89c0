package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

func dailyRuns(serviceNumber, from string, days int, km float64) []types.RunRecord {
	start := types.Day(from)
	out := make([]types.RunRecord, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, approvedRun(fmt.Sprintf("%s-%d", serviceNumber, i), string(start.AddDays(i)), serviceNumber, km))
	}
	return out
}

func scoreFor(t *testing.T, roster []types.Participant, records []types.RunRecord, w types.ChallengeWindow, today types.Day, th Thresholds) []types.StationScore {
	t.Helper()
	index := BuildActiveDays(records, time.UTC)
	totals := AggregateRunners(records, roster, index)
	scores, err := ScoreStations(roster, totals, index, w, today, th)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return scores
}

func TestScoreStationsTopSlotsZeroFill(t *testing.T) {
	roster := []types.Participant{
		{ServiceNumber: "1", Name: "Asha", Station: "North"},
		{ServiceNumber: "2", Name: "Bala", Station: "North"},
	}
	records := append(dailyRuns("1", "2025-01-01", 10, 8), dailyRuns("2", "2025-01-01", 10, 6)...)
	th := DefaultThresholds()
	th.ActiveDays = 10

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-20", th)

	if len(scores) != 1 {
		t.Fatalf("expected one station, got %+v", scores)
	}
	assertFloat(t, "performance", scores[0].PerformancePercent, 28)
	assertFloat(t, "distance", scores[0].TotalDistanceKm, 140)
	if scores[0].RunnerCount != 2 || scores[0].FinisherCount != 0 {
		t.Fatalf("unexpected counts %+v", scores[0])
	}
}

func TestScoreStationsOnlyTopSlotsCount(t *testing.T) {
	roster := []types.Participant{}
	records := []types.RunRecord{}
	for i, km := range []float64{10, 20, 30, 40, 50, 60, 70} {
		sn := fmt.Sprint(i)
		roster = append(roster, types.Participant{ServiceNumber: sn, Station: "North"})
		records = append(records, dailyRuns(sn, "2025-01-01", 10, km/10)...)
	}
	th := DefaultThresholds()
	th.ActiveDays = 10

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-31", th)

	assertFloat(t, "performance", scores[0].PerformancePercent, 50)
	if scores[0].RunnerCount != 7 {
		t.Fatalf("expected 7 runners, got %d", scores[0].RunnerCount)
	}
}

func TestScoreStationsAttendanceBonus(t *testing.T) {
	roster := []types.Participant{{ServiceNumber: "1", Station: "North"}}
	records := dailyRuns("1", "2025-01-01", 10, 10)

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-02-28"), "2025-01-10", DefaultThresholds())

	// 10 of 40 days -> 25%, full attendance -> 28.75, averaged over 5 slots
	assertFloat(t, "performance", scores[0].PerformancePercent, 5.75)
}

func TestScoreStationsBonusIsCapped(t *testing.T) {
	roster := []types.Participant{}
	records := []types.RunRecord{}
	for i := 0; i < 6; i++ {
		sn := fmt.Sprint(i)
		roster = append(roster, types.Participant{ServiceNumber: sn, Station: "North"})
		records = append(records, dailyRuns(sn, "2025-01-01", 5, 20)...)
	}
	th := DefaultThresholds()
	th.ActiveDays = 5

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-05", th)

	assertFloat(t, "performance", scores[0].PerformancePercent, 100)
	if scores[0].FinisherCount != 6 {
		t.Fatalf("expected 6 finishers, got %d", scores[0].FinisherCount)
	}
}

func TestScoreStationsFinisherNeedsBothThresholds(t *testing.T) {
	roster := []types.Participant{
		{ServiceNumber: "far", Station: "North"},
		{ServiceNumber: "often", Station: "North"},
	}
	records := append(dailyRuns("far", "2025-01-01", 2, 75), dailyRuns("often", "2025-01-01", 6, 1)...)
	th := DefaultThresholds()
	th.ActiveDays = 5

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-20", th)

	if scores[0].FinisherCount != 0 {
		t.Fatalf("neither runner met both thresholds, got %d finishers", scores[0].FinisherCount)
	}
}

func TestScoreStationsIgnoresDaysOutsideWindow(t *testing.T) {
	roster := []types.Participant{{ServiceNumber: "1", Station: "North"}}
	records := dailyRuns("1", "2024-12-27", 10, 10)
	th := DefaultThresholds()
	th.ActiveDays = 10

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-31", th)

	// 100 km but only 5 active days inside the window
	assertFloat(t, "performance", scores[0].PerformancePercent, 10)
	if scores[0].FinisherCount != 0 {
		t.Fatalf("days outside the window must not count toward finishing")
	}
}

func TestScoreStationsSkipsOrphansAndKeepsIdleRunners(t *testing.T) {
	roster := []types.Participant{
		{ServiceNumber: "1", Station: "North"},
		{ServiceNumber: "2", Station: "South"},
	}
	records := []types.RunRecord{
		approvedRun("a", "2025-01-02", "1", 10),
		{Id: "b", ServiceNumber: "99", Station: "North", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), DistanceKm: 50, Status: types.StatusApproved},
	}

	scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-31"), "2025-01-31", DefaultThresholds())

	if len(scores) != 2 {
		t.Fatalf("expected both stations, got %+v", scores)
	}
	if scores[0].Station != "North" || scores[0].RunnerCount != 1 {
		t.Fatalf("orphan must not be counted at North, got %+v", scores[0])
	}
	assertFloat(t, "north distance", scores[0].TotalDistanceKm, 10)
	if scores[1].Station != "South" || scores[1].RunnerCount != 1 || scores[1].PerformancePercent != 0 {
		t.Fatalf("idle runner must still count at South, got %+v", scores[1])
	}
}

func TestScoreStationsBounds(t *testing.T) {
	roster := []types.Participant{}
	records := []types.RunRecord{}
	for i := 0; i < 12; i++ {
		sn := fmt.Sprint(i)
		station := []string{"A", "B", "C"}[i%3]
		roster = append(roster, types.Participant{ServiceNumber: sn, Station: station})
		records = append(records, dailyRuns(sn, "2025-01-01", i+1, float64(i*7))...)
	}

	for _, today := range []types.Day{"2024-12-31", "2025-01-01", "2025-01-06", "2025-02-15"} {
		scores := scoreFor(t, roster, records, window("2025-01-01", "2025-01-10"), today, Thresholds{
			DistanceKm: 50, ActiveDays: 3, TopSlots: StationTopSlots, AttendanceBonus: FullAttendanceBonus,
		})
		for _, s := range scores {
			if s.PerformancePercent < 0 || s.PerformancePercent > 100 {
				t.Fatalf("%s on %s out of bounds: %v", s.Station, today, s.PerformancePercent)
			}
		}
	}
}

func TestScoreStationsEmptyAndMisconfigured(t *testing.T) {
	w := window("2025-01-01", "2025-01-31")

	scores, err := ScoreStations(nil, nil, ActiveDayIndex{}, w, "2025-01-05", DefaultThresholds())
	if err != nil || len(scores) != 0 {
		t.Fatalf("expected empty result, got %v, %v", scores, err)
	}

	bad := DefaultThresholds()
	bad.ActiveDays = 0
	if _, err := ScoreStations(nil, nil, ActiveDayIndex{}, w, "2025-01-05", bad); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}

	runners := []types.Participant{{ServiceNumber: "1", Name: "Asha", Station: "North"}}
	scores, err = ScoreStations(runners, nil, ActiveDayIndex{}, w, "2025-01-05", Thresholds{})
	if !errors.Is(err, ErrInvalidThreshold) || scores != nil {
		t.Fatalf("zero thresholds must be rejected before scoring, got %v, %v", scores, err)
	}

	if _, err := ScoreStations(nil, nil, ActiveDayIndex{}, window("2025-02-01", "2025-01-01"), "2025-01-05", DefaultThresholds()); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestProgressUsesLaggingCriterion(t *testing.T) {
	th := DefaultThresholds()
	assertFloat(t, "distance lags", runnerProgress(50, 40, th), 50)
	assertFloat(t, "days lag", runnerProgress(300, 10, th), 25)
	assertFloat(t, "both done", runnerProgress(300, 80, th), 100)
}
