package shot

import (
	"fmt"
	"sort"

	"github.com/stuartshay/shot-tracker/internal/calculator"
)

// Segment is one leg of a hole's shot trajectory
type Segment struct {
	Label    string                `json:"label"`
	From     calculator.Coordinate `json:"from"`
	To       calculator.Coordinate `json:"to"`
	Midpoint calculator.Coordinate `json:"midpoint"`
	Distance int                   `json:"distance"`
}

// Trajectory returns the legs tee -> shot 1 -> ... -> shot N -> green for a hole.
// Shots are ordered by shot number; shots on other holes are ignored. Segment
// distances are raw measurements and are not capped.
func Trajectory(hole Hole, shots []Shot) []Segment {
	holeShots := ForHole(shots, hole.HoleNumber)
	sort.SliceStable(holeShots, func(i, j int) bool {
		return holeShots[i].ShotNumber < holeShots[j].ShotNumber
	})

	type waypoint struct {
		name  string
		coord calculator.Coordinate
	}

	points := make([]waypoint, 0, len(holeShots)+2)
	points = append(points, waypoint{name: "Tee", coord: hole.Tee})
	for _, s := range holeShots {
		points = append(points, waypoint{name: fmt.Sprintf("Shot %d", s.ShotNumber), coord: s.Coordinates})
	}
	points = append(points, waypoint{name: "Green", coord: hole.Green})

	segments := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		from, to := points[i-1], points[i]
		segments = append(segments, Segment{
			Label:    from.name + " -> " + to.name,
			From:     from.coord,
			To:       to.coord,
			Midpoint: calculator.Midpoint(from.coord, to.coord),
			Distance: calculator.Distance(from.coord, to.coord),
		})
	}

	return segments
}

// Distances are the yards from a position to a hole's tee and green
type Distances struct {
	ToTee   int `json:"to_tee"`
	ToGreen int `json:"to_green"`
}

// HoleDistances measures a position against a hole's tee and green
func HoleDistances(position calculator.Coordinate, hole Hole) Distances {
	return Distances{
		ToTee:   calculator.Distance(position, hole.Tee),
		ToGreen: calculator.Distance(position, hole.Green),
	}
}
