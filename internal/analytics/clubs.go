package analytics

import (
	"math"
	"sort"

	"github.com/stuartshay/shot-tracker/internal/shot"
)

// ClubPerformance describes how one club has been hit
type ClubPerformance struct {
	Club        string `json:"club"`
	AvgDistance int    `json:"avg_distance"`
	MinDistance int    `json:"min_distance"`
	MaxDistance int    `json:"max_distance"`
	Accuracy    int    `json:"accuracy"`
	Usage       int    `json:"usage"`
	Consistency int    `json:"consistency"`
}

// AnalyzeClubPerformance returns one entry per club, most used first. Clubs
// with equal usage keep the order in which they first appear in shots.
//
// Consistency is 100 minus the standard deviation of the club's distances
// around AvgDistance, as a rounded percentage of AvgDistance, floored at 0. A club whose average
// distance is 0 scores 0.
func AnalyzeClubPerformance(shots []shot.Shot) []ClubPerformance {
	var order []string
	groups := make(map[string][]shot.Shot)
	for _, s := range shots {
		if _, ok := groups[s.Club]; !ok {
			order = append(order, s.Club)
		}
		groups[s.Club] = append(groups[s.Club], s)
	}

	out := make([]ClubPerformance, 0, len(order))
	for _, club := range order {
		out = append(out, clubPerformance(club, groups[club]))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Usage > out[j].Usage })

	return out
}

func clubPerformance(club string, shots []shot.Shot) ClubPerformance {
	minD, maxD, total := shots[0].Distance, shots[0].Distance, 0
	for _, s := range shots {
		total += s.Distance
		if s.Distance < minD {
			minD = s.Distance
		}
		if s.Distance > maxD {
			maxD = s.Distance
		}
	}

	avg := roundDiv(total, len(shots))

	return ClubPerformance{
		Club:        club,
		AvgDistance: avg,
		MinDistance: minD,
		MaxDistance: maxD,
		Accuracy:    accuracy(shots),
		Usage:       len(shots),
		Consistency: consistency(shots, avg),
	}
}

// consistency measures spread around the rounded average distance
func consistency(shots []shot.Shot, avg int) int {
	if avg == 0 {
		return 0
	}

	var variance float64
	for _, s := range shots {
		d := float64(s.Distance - avg)
		variance += d * d
	}
	variance /= float64(len(shots))

	score := 100 - int(math.Round(math.Sqrt(variance)/float64(avg)*100))
	if score < 0 {
		return 0
	}
	return score
}
