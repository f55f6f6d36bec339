package analytics

import (
	"math"
	"sort"

	"github.com/stuartshay/shot-tracker/internal/calculator"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

// DefaultGridSize is the number of cells per axis used when none is given
const DefaultGridSize = 50

// HeatMapPoint is one non-empty heat-map cell, positioned at the cell center
type HeatMapPoint struct {
	Coordinates     calculator.Coordinate `json:"coordinates"`
	Intensity       int                   `json:"intensity"`
	ShotCount       int                   `json:"shot_count"`
	AverageDistance int                   `json:"average_distance"`
}

// BoundingBox is the latitude/longitude extent of a set of coordinates
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// ComputeBoundingBox returns the extent of the shots' coordinates
func ComputeBoundingBox(shots []shot.Shot) (BoundingBox, bool) {
	if len(shots) == 0 {
		return BoundingBox{}, false
	}

	box := BoundingBox{
		MinLat: math.MaxFloat64,
		MaxLat: -math.MaxFloat64,
		MinLon: math.MaxFloat64,
		MaxLon: -math.MaxFloat64,
	}
	for _, s := range shots {
		box.MinLat = math.Min(box.MinLat, s.Coordinates.Latitude)
		box.MaxLat = math.Max(box.MaxLat, s.Coordinates.Latitude)
		box.MinLon = math.Min(box.MinLon, s.Coordinates.Longitude)
		box.MaxLon = math.Max(box.MaxLon, s.Coordinates.Longitude)
	}
	return box, true
}

// GenerateHeatMapData buckets shots into a gridSize x gridSize grid spanning
// their bounding box and returns one point per non-empty cell, ordered by
// latitude row then longitude column.
//
// Cells are half-open [min, min+step) except the last row and column, which
// also take shots lying exactly on the bounding box's maximum edge. An axis
// with no extent collapses to a single cell. A non-positive gridSize falls
// back to DefaultGridSize.
func GenerateHeatMapData(shots []shot.Shot, gridSize int) []HeatMapPoint {
	box, ok := ComputeBoundingBox(shots)
	if !ok {
		return []HeatMapPoint{}
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}

	latStep := (box.MaxLat - box.MinLat) / float64(gridSize)
	lonStep := (box.MaxLon - box.MinLon) / float64(gridSize)

	type cellKey struct{ row, col int }
	type cell struct {
		count    int
		distance int
	}

	cells := make(map[cellKey]*cell)
	for _, s := range shots {
		key := cellKey{
			row: cellIndex(s.Coordinates.Latitude, box.MinLat, latStep, gridSize),
			col: cellIndex(s.Coordinates.Longitude, box.MinLon, lonStep, gridSize),
		}
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.count++
		c.distance += s.Distance
	}

	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})

	points := make([]HeatMapPoint, 0, len(keys))
	for _, k := range keys {
		c := cells[k]
		points = append(points, HeatMapPoint{
			Coordinates: calculator.Coordinate{
				Latitude:  box.MinLat + float64(k.row)*latStep + latStep/2,
				Longitude: box.MinLon + float64(k.col)*lonStep + lonStep/2,
			},
			Intensity:       c.count,
			ShotCount:       c.count,
			AverageDistance: roundDiv(c.distance, c.count),
		})
	}

	return points
}

// cellIndex maps a value onto its grid cell along one axis
func cellIndex(value, origin, step float64, gridSize int) int {
	if step == 0 {
		return 0
	}
	idx := int(math.Floor((value - origin) / step))
	if idx >= gridSize {
		idx = gridSize - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
