package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

const (
	DefaultDistanceThresholdKm = 100.0
	DefaultActiveDayThreshold  = 40

	// StationTopSlots is the number of best progress scores averaged per
	// station. Empty slots count as zero.
	StationTopSlots = 5
	// FullAttendanceBonus multiplies the progress of a runner who was active
	// on every elapsed day of the window. The result is capped at 100.
	FullAttendanceBonus = 1.15
	// ConsistentStreak is the trailing streak needed for the consistent label.
	ConsistentStreak = 5
)

var (
	ErrInvalidThreshold = errors.New("threshold must be a positive finite number")
	ErrInvalidWindow    = errors.New("challenge window must have start <= end")
	ErrMissingLocation  = errors.New("challenge timezone is not set")
)

// ConfigError reports a programmer/configuration mistake. It is never used
// for bad input data.
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid challenge config %s=%v: %s", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type Thresholds struct {
	DistanceKm      float64
	ActiveDays      int
	TopSlots        int
	AttendanceBonus float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DistanceKm:      DefaultDistanceThresholdKm,
		ActiveDays:      DefaultActiveDayThreshold,
		TopSlots:        StationTopSlots,
		AttendanceBonus: FullAttendanceBonus,
	}
}

func (t Thresholds) Validate() error {
	if err := validateDistanceThreshold(t.DistanceKm); err != nil {
		return err
	}
	if t.ActiveDays <= 0 {
		return &ConfigError{Field: "ActiveDays", Value: t.ActiveDays, Err: ErrInvalidThreshold}
	}
	if t.TopSlots <= 0 {
		return &ConfigError{Field: "TopSlots", Value: t.TopSlots, Err: ErrInvalidThreshold}
	}
	if math.IsNaN(t.AttendanceBonus) || math.IsInf(t.AttendanceBonus, 0) || t.AttendanceBonus < 1 {
		return &ConfigError{Field: "AttendanceBonus", Value: t.AttendanceBonus, Err: ErrInvalidThreshold}
	}
	return nil
}

func validateDistanceThreshold(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km <= 0 {
		return &ConfigError{Field: "DistanceKm", Value: km, Err: ErrInvalidThreshold}
	}
	return nil
}

func validateWindow(w types.ChallengeWindow) error {
	if _, err := types.ParseDay(string(w.Start)); err != nil {
		return &ConfigError{Field: "Window.Start", Value: w.Start, Err: ErrInvalidWindow}
	}
	if _, err := types.ParseDay(string(w.End)); err != nil {
		return &ConfigError{Field: "Window.End", Value: w.End, Err: ErrInvalidWindow}
	}
	if w.End < w.Start {
		return &ConfigError{Field: "Window", Value: fmt.Sprintf("%s..%s", w.Start, w.End), Err: ErrInvalidWindow}
	}
	return nil
}

// Config is everything a full report computation needs besides the data.
type Config struct {
	Location   *time.Location
	Window     types.ChallengeWindow
	Thresholds Thresholds
	Stations   StationTable
}

func (c Config) Validate() error {
	if c.Location == nil {
		return &ConfigError{Field: "Location", Value: nil, Err: ErrMissingLocation}
	}
	if err := validateWindow(c.Window); err != nil {
		return err
	}
	return c.Thresholds.Validate()
}
