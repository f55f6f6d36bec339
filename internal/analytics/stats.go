// Package analytics aggregates recorded shots into round statistics, club
// performance, heat-map cells, shot patterns and time-windowed trends.
//
// Every function is a pure function of its arguments: inputs are never
// modified, and empty input yields zero-valued results rather than errors.
package analytics

import (
	"math"
	"sort"

	"github.com/stuartshay/shot-tracker/internal/shot"
)

// ShotStats summarizes a collection of shots
type ShotStats struct {
	TotalShots      int    `json:"total_shots"`
	AverageDistance int    `json:"average_distance"`
	Accuracy        int    `json:"accuracy"`
	MostUsedClub    string `json:"most_used_club"`
	BestHole        int    `json:"best_hole"`
	WorstHole       int    `json:"worst_hole"`
}

// CalculateShotStats computes summary statistics for shots.
//
// Accuracy is the rounded percentage of shots resting on the fairway or green.
// BestHole and WorstHole are the holes with the highest and lowest share of
// such shots; ties go to the lower hole number.
func CalculateShotStats(shots []shot.Shot) ShotStats {
	if len(shots) == 0 {
		return ShotStats{}
	}

	clubs := newTally()
	totalDistance := 0
	for _, s := range shots {
		totalDistance += s.Distance
		clubs.add(s.Club)
	}
	mostUsed, _ := clubs.top()

	best, worst := rankHoles(shots)

	return ShotStats{
		TotalShots:      len(shots),
		AverageDistance: roundDiv(totalDistance, len(shots)),
		Accuracy:        accuracy(shots),
		MostUsedClub:    mostUsed,
		BestHole:        best,
		WorstHole:       worst,
	}
}

type holeScore struct {
	hole  int
	shots int
	good  int
}

func (h holeScore) ratio() float64 {
	return float64(h.good) / float64(h.shots)
}

// rankHoles returns the hole numbers with the best and worst good-shot ratio
func rankHoles(shots []shot.Shot) (best, worst int) {
	byHole := make(map[int]*holeScore)
	for _, s := range shots {
		h, ok := byHole[s.HoleNumber]
		if !ok {
			h = &holeScore{hole: s.HoleNumber}
			byHole[s.HoleNumber] = h
		}
		h.shots++
		if s.Lie.IsGood() {
			h.good++
		}
	}

	scores := make([]holeScore, 0, len(byHole))
	for _, h := range byHole {
		scores = append(scores, *h)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].hole < scores[j].hole })

	if len(scores) == 0 {
		return 0, 0
	}

	best, worst = scores[0].hole, scores[0].hole
	bestRatio, worstRatio := scores[0].ratio(), scores[0].ratio()
	for _, h := range scores[1:] {
		r := h.ratio()
		if r > bestRatio {
			best, bestRatio = h.hole, r
		}
		if r < worstRatio {
			worst, worstRatio = h.hole, r
		}
	}
	return best, worst
}

// accuracy returns the rounded percentage of shots with a good lie
func accuracy(shots []shot.Shot) int {
	if len(shots) == 0 {
		return 0
	}
	good := 0
	for _, s := range shots {
		if s.Lie.IsGood() {
			good++
		}
	}
	return int(math.Round(float64(good) / float64(len(shots)) * 100))
}

// roundDiv divides and rounds to the nearest integer, returning 0 for n == 0
func roundDiv(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
