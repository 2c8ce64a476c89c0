package engine

import "uocsclub.net/runchallenge/internal/types"

// WindowDays lists every day of the window, start and end included.
func WindowDays(window types.ChallengeWindow) []types.Day {
	return daysBetween(window.Start, window.End)
}

// ElapsedDays lists the window days up to and including today. It is empty
// before the window opens and the whole window once it has closed.
func ElapsedDays(window types.ChallengeWindow, today types.Day) []types.Day {
	if _, err := types.ParseDay(string(today)); err != nil {
		return nil
	}
	if today < window.Start {
		return nil
	}
	last := window.End
	if today < last {
		last = today
	}
	return daysBetween(window.Start, last)
}

// DaysRemaining counts the window days from today to the end, today included.
func DaysRemaining(window types.ChallengeWindow, today types.Day) int {
	if today > window.End {
		return 0
	}
	if today < window.Start {
		return len(WindowDays(window))
	}
	return len(daysBetween(today, window.End))
}

// daysBetween is empty unless both ends are well-formed days.
func daysBetween(from, to types.Day) []types.Day {
	if _, err := types.ParseDay(string(from)); err != nil {
		return nil
	}
	if _, err := types.ParseDay(string(to)); err != nil {
		return nil
	}
	if to < from {
		return nil
	}
	out := []types.Day{}
	for d := from; d <= to; d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
