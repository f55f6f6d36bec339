package shot

import (
	"fmt"
	"sort"
	"strconv"
)

// ScoreEntry is the scorecard line for one hole of a round. A zero Score
// means the hole has not been scored yet.
type ScoreEntry struct {
	HoleNumber        int  `json:"hole_number"`
	Par               int  `json:"par"`
	Score             int  `json:"score,omitempty"`
	Putts             int  `json:"putts,omitempty"`
	FairwayHit        bool `json:"fairway_hit"`
	GreenInRegulation bool `json:"green_in_regulation"`
}

// Scored reports whether a score has been entered for the hole
func (e ScoreEntry) Scored() bool {
	return e.Score > 0
}

// NewScorecard returns one unscored entry per hole, ordered by hole number
func NewScorecard(holes []Hole) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(holes))
	for _, h := range holes {
		entries = append(entries, ScoreEntry{HoleNumber: h.HoleNumber, Par: h.Par})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].HoleNumber < entries[j].HoleNumber })
	return entries
}

// ScoreUpdate changes selected fields of one hole's entry. Nil fields keep
// their current value; a zero Score clears the hole.
type ScoreUpdate struct {
	HoleNumber        int
	Score             *int
	Putts             *int
	FairwayHit        *bool
	GreenInRegulation *bool
}

// Apply returns e with the update applied
func (u ScoreUpdate) Apply(e ScoreEntry) (ScoreEntry, error) {
	if u.Score != nil {
		if *u.Score < 0 {
			return ScoreEntry{}, fmt.Errorf("score must not be negative, got %d", *u.Score)
		}
		e.Score = *u.Score
	}
	if u.Putts != nil {
		if *u.Putts < 0 {
			return ScoreEntry{}, fmt.Errorf("putts must not be negative, got %d", *u.Putts)
		}
		e.Putts = *u.Putts
	}
	if e.Scored() && e.Putts > e.Score {
		return ScoreEntry{}, fmt.Errorf("putts (%d) exceed score (%d) on hole %d", e.Putts, e.Score, e.HoleNumber)
	}
	if u.FairwayHit != nil {
		e.FairwayHit = *u.FairwayHit
	}
	if u.GreenInRegulation != nil {
		e.GreenInRegulation = *u.GreenInRegulation
	}
	return e, nil
}

// Scorecard is a round's entries with their running totals
type Scorecard struct {
	Entries            []ScoreEntry `json:"entries"`
	TotalScore         int          `json:"total_score"`
	TotalPar           int          `json:"total_par"`
	ScoreToPar         int          `json:"score_to_par"`
	ScoreToParLabel    string       `json:"score_to_par_label"`
	HolesCompleted     int          `json:"holes_completed"`
	TotalHoles         int          `json:"total_holes"`
	TotalPutts         int          `json:"total_putts"`
	FairwaysHit        int          `json:"fairways_hit"`
	GreensInRegulation int          `json:"greens_in_regulation"`
}

// Summarize totals a scorecard. TotalPar covers every hole on the card,
// scored or not, so ScoreToPar runs negative until the round is finished.
func Summarize(entries []ScoreEntry) Scorecard {
	card := Scorecard{
		Entries:    entries,
		TotalHoles: len(entries),
	}
	if card.Entries == nil {
		card.Entries = []ScoreEntry{}
	}

	for _, e := range entries {
		card.TotalPar += e.Par
		if !e.Scored() {
			continue
		}
		card.TotalScore += e.Score
		card.TotalPutts += e.Putts
		card.HolesCompleted++
		if e.FairwayHit {
			card.FairwaysHit++
		}
		if e.GreenInRegulation {
			card.GreensInRegulation++
		}
	}

	card.ScoreToPar = card.TotalScore - card.TotalPar
	card.ScoreToParLabel = FormatToPar(card.ScoreToPar)

	return card
}

// FormatToPar renders a score relative to par as "E", "+n" or "-n"
func FormatToPar(diff int) string {
	switch {
	case diff == 0:
		return "E"
	case diff > 0:
		return "+" + strconv.Itoa(diff)
	default:
		return strconv.Itoa(diff)
	}
}
