package types

import "time"

type RunStatus string

const (
	StatusPending  RunStatus = "pending"
	StatusApproved RunStatus = "approved"
	StatusRejected RunStatus = "rejected"
)

// RawRunRecord is a run as handed over by the data API, before any coercion.
// Distance is whatever the sheet produced: a number, a string or nothing.
type RawRunRecord struct {
	Id              string
	Date            string
	ServiceNumber   string
	Name            string
	Station         string
	Distance        any
	Status          string
	RejectionReason string
}

type RawParticipant struct {
	ServiceNumber string
	Name          string
	Station       string
}

// Snapshot is one consistent read of the data API. Participants are kept in
// registration order.
type Snapshot struct {
	Runs         []RawRunRecord
	Participants []RawParticipant
	FetchedAt    time.Time
}

type RunRecord struct {
	Id              string    `json:"id"`
	Date            time.Time `json:"date"`
	ServiceNumber   string    `json:"serviceNumber"`
	Name            string    `json:"name"`
	Station         string    `json:"station"`
	DistanceKm      float64   `json:"distanceKm"`
	Status          RunStatus `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
}

func (r RunRecord) Approved() bool {
	return r.Status == StatusApproved
}

type Participant struct {
	ServiceNumber string `json:"serviceNumber"`
	Name          string `json:"name"`
	Station       string `json:"station"`
}

// ChallengeWindow is inclusive on both ends.
type ChallengeWindow struct {
	Start Day `json:"start"`
	End   Day `json:"end"`
}
