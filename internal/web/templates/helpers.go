package templates

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"
	"uocsclub.net/runchallenge/internal/engine"
	"uocsclub.net/runchallenge/internal/types"
)

func windowSummary(report *engine.Report) string {
	return fmt.Sprintf("%s to %s, day %d, %d days remaining",
		report.Window.Start, report.Window.End, report.ElapsedDays, report.DaysRemaining)
}

func km(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func isViewer(serviceNumber, highlight string) bool {
	return highlight != "" && serviceNumber == highlight
}

// visibleRunners cuts the leaderboard to limit rows but always keeps the
// viewer's own row.
func visibleRunners(entries []types.Ranked[types.RunnerTotals], highlight string, limit int) []types.Ranked[types.RunnerTotals] {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	out := entries[:limit:limit]
	for _, r := range entries[limit:] {
		if isViewer(r.Entry.ServiceNumber, highlight) {
			out = append(out, r)
		}
	}
	return out
}

func journeyURL(serviceNumber string) templ.SafeURL {
	return templ.URL("/api/journey/" + url.PathEscape(serviceNumber))
}
