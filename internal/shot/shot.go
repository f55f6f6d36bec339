// Package shot defines the round, hole and shot records tracked on the course
// and derives the per-shot distances stored with each new shot.
package shot

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/stuartshay/shot-tracker/internal/calculator"
)

// Lie is the surface a ball rests on after a shot
type Lie string

// Lie values accepted by ParseLie
const (
	LieTee     Lie = "tee"
	LieFairway Lie = "fairway"
	LieRough   Lie = "rough"
	LieSand    Lie = "sand"
	LieGreen   Lie = "green"
)

// Lies lists every known lie in display order
var Lies = []Lie{LieTee, LieFairway, LieRough, LieSand, LieGreen}

// ParseLie converts a case-insensitive lie name into a Lie
func ParseLie(s string) (Lie, error) {
	l := Lie(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Lies {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown lie %q", s)
}

// IsGood reports whether the lie counts toward accuracy (fairway or green)
func (l Lie) IsGood() bool {
	return l == LieFairway || l == LieGreen
}

// maxIDLength bounds course and round identifiers
const maxIDLength = 64

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID checks that a course or round identifier is 1 to 64 letters,
// digits, underscores or hyphens. Round IDs name report files, so path
// separators and dots are rejected.
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s id is longer than %d characters", kind, maxIDLength)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s id %q may only contain letters, digits, '_' and '-'", kind, id)
	}
	return nil
}

// Shot records one stroke and where the ball came to rest
type Shot struct {
	ID          string                `json:"id"`
	RoundID     string                `json:"round_id,omitempty"`
	HoleNumber  int                   `json:"hole_number"`
	ShotNumber  int                   `json:"shot_number"`
	Coordinates calculator.Coordinate `json:"coordinates"`
	Club        string                `json:"club"`
	Distance    int                   `json:"distance"`
	Lie         Lie                   `json:"lie"`
	Timestamp   time.Time             `json:"timestamp"`
}

// Hole holds the anchor coordinates used to measure shots on a hole
type Hole struct {
	HoleNumber int                   `json:"hole_number"`
	Par        int                   `json:"par"`
	Tee        calculator.Coordinate `json:"tee"`
	Green      calculator.Coordinate `json:"green"`
	Yardage    int                   `json:"yardage,omitempty"`
}

// Course is a named set of holes
type Course struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Holes    []Hole `json:"holes"`
}

// Hole returns the hole with the given number
func (c *Course) Hole(number int) (Hole, bool) {
	for _, h := range c.Holes {
		if h.HoleNumber == number {
			return h, true
		}
	}
	return Hole{}, false
}

// Round is one played round on a course
type Round struct {
	ID         string       `json:"id"`
	CourseID   string       `json:"course_id"`
	CourseName string       `json:"course_name"`
	DeviceID   string       `json:"device_id,omitempty"`
	PlayedAt   time.Time    `json:"played_at"`
	Scores     []ScoreEntry `json:"scores"`
}

// Score returns the scorecard entry for a hole
func (r *Round) Score(holeNumber int) (ScoreEntry, bool) {
	for _, e := range r.Scores {
		if e.HoleNumber == holeNumber {
			return e, true
		}
	}
	return ScoreEntry{}, false
}

// SetScore replaces the entry for e's hole, or inserts it in hole order
func (r *Round) SetScore(e ScoreEntry) {
	for i, existing := range r.Scores {
		if existing.HoleNumber == e.HoleNumber {
			r.Scores[i] = e
			return
		}
	}
	i := sort.Search(len(r.Scores), func(i int) bool { return r.Scores[i].HoleNumber > e.HoleNumber })
	r.Scores = slices.Insert(r.Scores, i, e)
}

// ForHole returns the shots recorded on a hole, preserving input order
func ForHole(shots []Shot, holeNumber int) []Shot {
	var out []Shot
	for _, s := range shots {
		if s.HoleNumber == holeNumber {
			out = append(out, s)
		}
	}
	return out
}
