package analytics

import (
	"math"

	"github.com/stuartshay/shot-tracker/internal/shot"
)

// HolePerformance summarizes how often and how well a hole has been played
type HolePerformance struct {
	HoleNumber  int     `json:"hole_number"`
	Par         int     `json:"par"`
	AvgShots    float64 `json:"avg_shots"`
	BestScore   int     `json:"best_score"`
	WorstScore  int     `json:"worst_score"`
	PlayedCount int     `json:"played_count"`
}

// AnalyzeHolePerformance groups shots by hole and splits each hole's shots
// into plays, starting a new play whenever shot number 1 follows earlier
// shots. Holes missing from holes are skipped. Results follow the order in
// which holes first appear in shots.
func AnalyzeHolePerformance(shots []shot.Shot, holes []shot.Hole) []HolePerformance {
	var order []int
	byHole := make(map[int][]shot.Shot)
	for _, s := range shots {
		if _, ok := byHole[s.HoleNumber]; !ok {
			order = append(order, s.HoleNumber)
		}
		byHole[s.HoleNumber] = append(byHole[s.HoleNumber], s)
	}

	pars := make(map[int]int, len(holes))
	for _, h := range holes {
		pars[h.HoleNumber] = h.Par
	}

	out := make([]HolePerformance, 0, len(order))
	for _, number := range order {
		par, ok := pars[number]
		if !ok {
			continue
		}

		plays := splitPlays(byHole[number])
		best, worst, total := plays[0], plays[0], 0
		for _, strokes := range plays {
			total += strokes
			if strokes < best {
				best = strokes
			}
			if strokes > worst {
				worst = strokes
			}
		}

		out = append(out, HolePerformance{
			HoleNumber:  number,
			Par:         par,
			AvgShots:    math.Round(float64(total)/float64(len(plays))*10) / 10,
			BestScore:   best,
			WorstScore:  worst,
			PlayedCount: len(plays),
		})
	}

	return out
}

// splitPlays returns the stroke count of each play of a hole
func splitPlays(shots []shot.Shot) []int {
	var plays []int
	current := 0
	for _, s := range shots {
		if s.ShotNumber == 1 && current > 0 {
			plays = append(plays, current)
			current = 0
		}
		current++
	}
	if current > 0 {
		plays = append(plays, current)
	}
	return plays
}
