package analytics

import "github.com/jonboulle/clockwork"

// clock is the time source for trend windows; tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used by CalculatePerformanceTrends. Pass nil
// to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
