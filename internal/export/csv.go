package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"uocsclub.net/runchallenge/internal/engine"
)

var ErrUnknownView = errors.New("unknown export view")

const (
	ViewLeaderboard = "leaderboard"
	ViewStations    = "stations"
	ViewFinishers   = "finishers"
	ViewConsistency = "consistency"
)

var Views = []string{ViewLeaderboard, ViewStations, ViewFinishers, ViewConsistency}

// Write flattens one report view to CSV with a fixed column order.
func Write(w io.Writer, view string, report *engine.Report) error {
	rows, err := Rows(view, report)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// Rows returns the header followed by one row per entry.
func Rows(view string, report *engine.Report) ([][]string, error) {
	switch view {
	case ViewLeaderboard:
		rows := [][]string{{"rank", "service_number", "name", "station", "total_distance_km", "run_count", "active_days", "registered"}}
		for _, r := range report.Leaderboard {
			e := r.Entry
			rows = append(rows, []string{
				strconv.Itoa(r.Rank), e.ServiceNumber, e.Name, e.Station,
				km(e.TotalDistanceKm), strconv.Itoa(e.RunCount), strconv.Itoa(e.ActiveDayCount),
				strconv.FormatBool(e.Registered),
			})
		}
		return rows, nil

	case ViewStations:
		rows := [][]string{{"rank", "station", "performance_percent", "total_distance_km", "runners", "finishers"}}
		for _, r := range report.Stations {
			e := r.Entry
			rows = append(rows, []string{
				strconv.Itoa(r.Rank), e.Station, km(e.PerformancePercent), km(e.TotalDistanceKm),
				strconv.Itoa(e.RunnerCount), strconv.Itoa(e.FinisherCount),
			})
		}
		return rows, nil

	case ViewFinishers:
		rows := [][]string{{"position", "service_number", "name", "station", "completion_date", "active_days_to_complete", "distance_at_completion_km"}}
		for _, f := range report.Finishers {
			atCompletion := 0.0
			if n := len(f.CumulativeLog); n > 0 {
				atCompletion = f.CumulativeLog[n-1].CumulativeKm
			}
			rows = append(rows, []string{
				strconv.Itoa(f.Position), f.ServiceNumber, f.Name, f.Station,
				f.CompletionDate.String(), strconv.Itoa(f.ActiveDaysToComplete), km(atCompletion),
			})
		}
		return rows, nil

	case ViewConsistency:
		rows := [][]string{{"service_number", "name", "station", "label", "streak", "inactive_days"}}
		for _, c := range report.Consistency {
			rows = append(rows, []string{
				c.ServiceNumber, c.Name, c.Station, string(c.Label),
				strconv.Itoa(c.Streak), strconv.Itoa(c.InactiveDayCount),
			})
		}
		return rows, nil
	}

	return nil, ErrUnknownView
}

func km(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
