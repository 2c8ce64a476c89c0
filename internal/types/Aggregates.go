package types

type RunnerTotals struct {
	ServiceNumber   string  `json:"serviceNumber"`
	Name            string  `json:"name"`
	Station         string  `json:"station"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	RunCount        int     `json:"runCount"`
	ActiveDayCount  int     `json:"activeDayCount"`
	Registered      bool    `json:"registered"` // false for runs whose service number is not on the roster
}

type StationScore struct {
	Station            string  `json:"station"`
	TotalDistanceKm    float64 `json:"totalDistanceKm"`
	RunnerCount        int     `json:"runnerCount"`
	PerformancePercent float64 `json:"performancePercent"`
	FinisherCount      int     `json:"finisherCount"`
}

type Ranked[T any] struct {
	Rank  int `json:"rank"`
	Entry T   `json:"entry"`
}

type CompletionStep struct {
	Date         Day     `json:"date"`
	DistanceKm   float64 `json:"distanceKm"`
	CumulativeKm float64 `json:"cumulativeKm"`
}

type Completion struct {
	CompletionDate       Day              `json:"completionDate"`
	ActiveDaysToComplete int              `json:"activeDaysToComplete"`
	CumulativeLog        []CompletionStep `json:"cumulativeLog"`
}

type Finisher struct {
	Position      int    `json:"position"`
	ServiceNumber string `json:"serviceNumber"`
	Name          string `json:"name"`
	Station       string `json:"station"`
	Completion
}

type ConsistencyLabel string

const (
	LabelDaily      ConsistencyLabel = "daily"
	LabelConsistent ConsistencyLabel = "consistent"
	LabelInactive   ConsistencyLabel = "inactive"
)

type Consistency struct {
	Label            ConsistencyLabel `json:"label"`
	Streak           int              `json:"streak"`
	InactiveDayCount int              `json:"inactiveDayCount"`
}

type ConsistencyEntry struct {
	ServiceNumber string `json:"serviceNumber"`
	Name          string `json:"name"`
	Station       string `json:"station"`
	Consistency
}
