package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

// Diagnostics counts data-quality problems found while building a report.
// None of them stop the computation.
type Diagnostics struct {
	InvalidDates          int      `json:"invalidDates"`
	InvalidDistances      int      `json:"invalidDistances"`
	UnknownStatuses       int      `json:"unknownStatuses"`
	DroppedParticipants   int      `json:"droppedParticipants"`
	DuplicateParticipants int      `json:"duplicateParticipants"`
	OrphanRunners         int      `json:"orphanRunners"`
	Warnings              []string `json:"warnings"`
}

func (d Diagnostics) Clean() bool {
	return d.InvalidDates == 0 &&
		d.InvalidDistances == 0 &&
		d.UnknownStatuses == 0 &&
		d.DroppedParticipants == 0 &&
		d.DuplicateParticipants == 0 &&
		d.OrphanRunners == 0
}

func (d *Diagnostics) merge(o Diagnostics) {
	d.InvalidDates += o.InvalidDates
	d.InvalidDistances += o.InvalidDistances
	d.UnknownStatuses += o.UnknownStatuses
	d.DroppedParticipants += o.DroppedParticipants
	d.DuplicateParticipants += o.DuplicateParticipants
	d.OrphanRunners += o.OrphanRunners
	d.Warnings = append(d.Warnings, o.Warnings...)
}

func (d *Diagnostics) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

var errEmptyDate = errors.New("empty date")

// local layouts are read in the challenge zone; RFC3339 carries its own offset
var localDateLayouts = []string{
	types.DayLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

type Normalizer struct {
	loc      *time.Location
	stations StationTable
}

func NewNormalizer(loc *time.Location, stations StationTable) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, stations: stations}
}

// Runs coerces raw records into RunRecords. Records with an unparseable date
// are left out and reported; every other defect is repaired in place.
func (n *Normalizer) Runs(raw []types.RawRunRecord) ([]types.RunRecord, Diagnostics) {
	diag := Diagnostics{}
	out := make([]types.RunRecord, 0, len(raw))

	for _, r := range raw {
		id := strings.TrimSpace(r.Id)

		date, err := n.parseDate(r.Date)
		if err != nil {
			diag.InvalidDates++
			diag.warnf("run %q: unparseable date %q", id, r.Date)
			continue
		}

		distance, ok := coerceDistance(r.Distance)
		if !ok {
			diag.InvalidDistances++
			diag.warnf("run %q: invalid distance %v, using 0", id, r.Distance)
		}

		status, known := parseStatus(r.Status)
		if !known {
			diag.UnknownStatuses++
			diag.warnf("run %q: unknown status %q, treating as pending", id, r.Status)
		}

		out = append(out, types.RunRecord{
			Id:              id,
			Date:            date,
			ServiceNumber:   strings.TrimSpace(r.ServiceNumber),
			Name:            strings.TrimSpace(r.Name),
			Station:         n.stations.Canonical(r.Station),
			DistanceKm:      distance,
			Status:          status,
			RejectionReason: strings.TrimSpace(r.RejectionReason),
		})
	}

	return out, diag
}

// Participants trims the roster, keeping registration order. Entries without
// a service number are dropped, repeated service numbers keep the first.
func (n *Normalizer) Participants(raw []types.RawParticipant) ([]types.Participant, Diagnostics) {
	diag := Diagnostics{}
	out := make([]types.Participant, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, p := range raw {
		sn := strings.TrimSpace(p.ServiceNumber)
		if sn == "" {
			diag.DroppedParticipants++
			diag.warnf("participant %q has no service number", strings.TrimSpace(p.Name))
			continue
		}
		if seen[sn] {
			diag.DuplicateParticipants++
			diag.warnf("participant %q registered more than once", sn)
			continue
		}
		seen[sn] = true

		out = append(out, types.Participant{
			ServiceNumber: sn,
			Name:          strings.TrimSpace(p.Name),
			Station:       n.stations.Canonical(p.Station),
		})
	}

	return out, diag
}

func (n *Normalizer) parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyDate
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	var lastErr error
	for _, layout := range localDateLayouts {
		t, err := time.ParseInLocation(layout, s, n.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseStatus(raw string) (types.RunStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return types.StatusPending, true
	case string(types.StatusPending):
		return types.StatusPending, true
	case string(types.StatusApproved):
		return types.StatusApproved, true
	case string(types.StatusRejected):
		return types.StatusRejected, true
	}
	return types.StatusPending, false
}

// coerceDistance returns the distance in km and whether the input was a
// usable value. Unusable values come back as 0.
func coerceDistance(v any) (float64, bool) {
	var f float64

	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
