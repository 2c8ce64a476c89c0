package engine

import (
	"cmp"
	"slices"
	"strings"

	"uocsclub.net/runchallenge/internal/types"
)

// Rank sorts entries by key descending, using tieBreak only to order equal
// keys, and assigns ranks: equal keys share a rank and the next distinct key
// is ranked by its 1-based position (100,100,90,80 -> 1,1,3,4).
// The input slice is not modified.
func Rank[T any](entries []T, key func(T) float64, tieBreak func(a, b T) int) []types.Ranked[T] {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if c := cmp.Compare(key(b), key(a)); c != 0 {
			return c
		}
		if tieBreak != nil {
			return tieBreak(a, b)
		}
		return 0
	})

	out := make([]types.Ranked[T], len(sorted))
	lastRank := 0
	var lastKey float64
	for i, e := range sorted {
		k := key(e)
		if i == 0 || k != lastKey {
			lastRank = i + 1
			lastKey = k
		}
		out[i] = types.Ranked[T]{Rank: lastRank, Entry: e}
	}
	return out
}

func TotalDistance(t types.RunnerTotals) float64 {
	return t.TotalDistanceKm
}

// ByNameFold orders by case-insensitive name, then service number.
func ByNameFold(a, b types.RunnerTotals) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ServiceNumber, b.ServiceNumber)
}

func RankRunners(totals []types.RunnerTotals) []types.Ranked[types.RunnerTotals] {
	return Rank(totals, TotalDistance, ByNameFold)
}

func RankStations(scores []types.StationScore) []types.Ranked[types.StationScore] {
	return Rank(scores,
		func(s types.StationScore) float64 { return s.PerformancePercent },
		func(a, b types.StationScore) int { return strings.Compare(a.Station, b.Station) },
	)
}
