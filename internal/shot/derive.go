package shot

import (
	"time"

	"github.com/google/uuid"

	"github.com/stuartshay/shot-tracker/internal/calculator"
)

// MaxShotDistance is the default ceiling, in yards, for a derived shot distance
const MaxShotDistance = 400

// Placement describes a newly placed shot before its distance is known
type Placement struct {
	RoundID     string
	Club        string
	Lie         Lie
	Coordinates calculator.Coordinate
	Timestamp   time.Time
}

// DeriveDistance returns the yards attributed to a shot placed at the given
// coordinate. The first shot on a hole is measured from the tee, later shots
// from the shot with the highest existing shot number. Shots in prior that
// belong to other holes are ignored. The result is capped at maxYards, or at
// MaxShotDistance when maxYards is not positive.
func DeriveDistance(hole Hole, prior []Shot, at calculator.Coordinate, maxYards int) int {
	from := hole.Tee
	if last, ok := lastShot(prior, hole.HoleNumber); ok {
		from = last.Coordinates
	}

	return ClampDistance(calculator.Distance(from, at), maxYards)
}

// ClampDistance caps yards at maxYards, defaulting the cap to MaxShotDistance
func ClampDistance(yards, maxYards int) int {
	if maxYards <= 0 {
		maxYards = MaxShotDistance
	}
	if yards > maxYards {
		return maxYards
	}
	return yards
}

// NextShotNumber returns the shot number the next shot on a hole should take
func NextShotNumber(prior []Shot, holeNumber int) int {
	if last, ok := lastShot(prior, holeNumber); ok {
		return last.ShotNumber + 1
	}
	return 1
}

// NewShot builds a shot record for a placement on a hole, assigning a fresh ID,
// the next shot number and the derived distance. prior is not modified.
func NewShot(hole Hole, prior []Shot, p Placement, maxYards int) Shot {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return Shot{
		ID:          uuid.New().String(),
		RoundID:     p.RoundID,
		HoleNumber:  hole.HoleNumber,
		ShotNumber:  NextShotNumber(prior, hole.HoleNumber),
		Coordinates: p.Coordinates,
		Club:        p.Club,
		Distance:    DeriveDistance(hole, prior, p.Coordinates, maxYards),
		Lie:         p.Lie,
		Timestamp:   ts,
	}
}

// lastShot finds the shot with the highest shot number on a hole
func lastShot(shots []Shot, holeNumber int) (Shot, bool) {
	var (
		last  Shot
		found bool
	)
	for _, s := range shots {
		if s.HoleNumber != holeNumber {
			continue
		}
		if !found || s.ShotNumber > last.ShotNumber {
			last = s
			found = true
		}
	}
	return last, found
}
