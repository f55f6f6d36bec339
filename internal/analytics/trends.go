package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/stuartshay/shot-tracker/internal/shot"
)

// Window is a trend comparison period
type Window string

// Supported trend windows
const (
	WindowWeek   Window = "week"
	WindowMonth  Window = "month"
	WindowSeason Window = "season"
)

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	switch w {
	case WindowMonth:
		return 30 * 24 * time.Hour
	case WindowSeason:
		return 90 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// ParseWindow converts a window name; an empty name means WindowWeek
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowWeek, nil
	case WindowWeek, WindowMonth, WindowSeason:
		return w, nil
	default:
		return "", fmt.Errorf("unknown trend window %q", s)
	}
}

// TrendDeltas are recent minus previous
type TrendDeltas struct {
	AccuracyChange int `json:"accuracy_change"`
	DistanceChange int `json:"distance_change"`
	ShotsChange    int `json:"shots_change"`
}

// PerformanceTrends compares the most recent window with the one before it
type PerformanceTrends struct {
	Window   Window      `json:"window"`
	Recent   ShotStats   `json:"recent"`
	Previous ShotStats   `json:"previous"`
	Trends   TrendDeltas `json:"trends"`
}

// CalculatePerformanceTrends compares shot stats for the current window with
// the preceding window, measured back from the package clock's now.
func CalculatePerformanceTrends(shots []shot.Shot, window Window) PerformanceTrends {
	return CalculatePerformanceTrendsAt(shots, window, clock.Now())
}

// CalculatePerformanceTrendsAt is CalculatePerformanceTrends with an explicit now.
//
// A shot aged a belongs to recent when a < window and to previous when
// window <= a <= 2*window. Shots timestamped after now count as recent; older
// shots are ignored.
func CalculatePerformanceTrendsAt(shots []shot.Shot, window Window, now time.Time) PerformanceTrends {
	span := window.Duration()

	var recent, previous []shot.Shot
	for _, s := range shots {
		age := now.Sub(s.Timestamp)
		switch {
		case age < span:
			recent = append(recent, s)
		case age <= 2*span:
			previous = append(previous, s)
		}
	}

	recentStats := CalculateShotStats(recent)
	previousStats := CalculateShotStats(previous)

	return PerformanceTrends{
		Window:   window,
		Recent:   recentStats,
		Previous: previousStats,
		Trends: TrendDeltas{
			AccuracyChange: recentStats.Accuracy - previousStats.Accuracy,
			DistanceChange: recentStats.AverageDistance - previousStats.AverageDistance,
			ShotsChange:    recentStats.TotalShots - previousStats.TotalShots,
		},
	}
}
