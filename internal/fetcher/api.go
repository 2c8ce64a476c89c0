package fetcher

import (
	"encoding/json"
	"strings"

	"uocsclub.net/runchallenge/internal/types"
)

type SheetRunsResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    []*SheetRun `json:"data"`
}

type SheetUsersResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Data    []*SheetUser `json:"data"`
}

// SheetRun mirrors a row of the runs sheet. Sheet cells come back as either
// strings or numbers depending on how they were typed in, so the loosely
// typed columns are kept raw and left to the normalizer.
type SheetRun struct {
	Id              json.RawMessage `json:"id"`
	Date            string          `json:"date"`
	ServiceNumber   json.RawMessage `json:"serviceNumber"`
	Name            string          `json:"name"`
	Station         string          `json:"station"`
	Distance        any             `json:"distance"`
	Status          string          `json:"status,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}

type SheetUser struct {
	ServiceNumber json.RawMessage `json:"serviceNumber"`
	Name          string          `json:"name"`
	Station       string          `json:"station"`
}

func (r *SheetRunsResponse) ToRawRuns() []types.RawRunRecord {
	if r == nil {
		return nil
	}

	out := make([]types.RawRunRecord, 0, len(r.Data))
	for _, run := range r.Data {
		if run == nil {
			continue
		}
		out = append(out, types.RawRunRecord{
			Id:              cellString(run.Id),
			Date:            run.Date,
			ServiceNumber:   cellString(run.ServiceNumber),
			Name:            run.Name,
			Station:         run.Station,
			Distance:        run.Distance,
			Status:          run.Status,
			RejectionReason: run.RejectionReason,
		})
	}
	return out
}

func (r *SheetUsersResponse) ToRawParticipants() []types.RawParticipant {
	if r == nil {
		return nil
	}

	out := make([]types.RawParticipant, 0, len(r.Data))
	for _, user := range r.Data {
		if user == nil {
			continue
		}
		out = append(out, types.RawParticipant{
			ServiceNumber: cellString(user.ServiceNumber),
			Name:          user.Name,
			Station:       user.Station,
		})
	}
	return out
}

// cellString turns a string or numeric cell into its text form.
// 1234 and "1234" both become "1234".
func cellString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
