package engine

import (
	"testing"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func approvedRun(id, day, serviceNumber string, km float64) types.RunRecord {
	return runWithStatus(id, day, serviceNumber, km, types.StatusApproved)
}

func runWithStatus(id, day, serviceNumber string, km float64, status types.RunStatus) types.RunRecord {
	d, err := time.ParseInLocation(types.DayLayout, day, time.UTC)
	if err != nil {
		panic(err)
	}
	return types.RunRecord{
		Id:            id,
		Date:          d,
		ServiceNumber: serviceNumber,
		Name:          "runner " + serviceNumber,
		DistanceKm:    km,
		Status:        status,
	}
}

func window(start, end string) types.ChallengeWindow {
	return types.ChallengeWindow{Start: types.Day(start), End: types.Day(end)}
}

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected %v, got %v", name, want, got)
	}
}
