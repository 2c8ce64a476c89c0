package engine

import (
	"testing"

	"uocsclub.net/runchallenge/internal/types"
)

func TestElapsedDays(t *testing.T) {
	w := window("2025-01-30", "2025-02-02")

	if days := ElapsedDays(w, "2025-01-29"); len(days) != 0 {
		t.Fatalf("expected nothing before the window opens, got %v", days)
	}

	days := ElapsedDays(w, "2025-01-31")
	want := []types.Day{"2025-01-30", "2025-01-31"}
	if len(days) != len(want) {
		t.Fatalf("expected %v, got %v", want, days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, days)
		}
	}

	if days := ElapsedDays(w, "2025-03-01"); len(days) != 4 || days[3] != "2025-02-02" {
		t.Fatalf("closed window must be fully elapsed, got %v", days)
	}
}

func TestDaysRemaining(t *testing.T) {
	w := window("2025-01-01", "2025-01-10")

	cases := map[types.Day]int{
		"2024-12-25": 10,
		"2025-01-01": 10,
		"2025-01-10": 1,
		"2025-01-11": 0,
	}
	for today, want := range cases {
		if got := DaysRemaining(w, today); got != want {
			t.Fatalf("DaysRemaining(%s): expected %d, got %d", today, want, got)
		}
	}
}

func TestMalformedDaysGiveEmptyWindow(t *testing.T) {
	if days := WindowDays(window("1", "2025-01-10")); days != nil {
		t.Fatalf("malformed start must not be walked, got %d days", len(days))
	}
	if days := WindowDays(window("2025-01-01", "9")); days != nil {
		t.Fatalf("malformed end must not be walked, got %d days", len(days))
	}
	if days := ElapsedDays(window("2025-01-01", "2025-01-10"), "soon"); days != nil {
		t.Fatalf("malformed today must give no elapsed days, got %v", days)
	}
	if n := DaysRemaining(window("x", "2025-01-10"), "2025-01-05"); n != 0 {
		t.Fatalf("expected 0 remaining for a malformed window, got %d", n)
	}
}
