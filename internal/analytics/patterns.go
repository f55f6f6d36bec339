package analytics

import (
	"github.com/stuartshay/shot-tracker/internal/shot"
)

// Distance bucket thresholds in yards
const (
	ShortShotMax  = 100
	MediumShotMax = 200
)

// DistanceRanges is a three-bucket histogram of shot distances:
// short < 100, medium [100, 200), long >= 200 yards
type DistanceRanges struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// LieClubs is the club usage recorded for shots resting on one lie
type LieClubs struct {
	Lie   string  `json:"lie"`
	Clubs []Count `json:"clubs"`
}

// ShotPatterns breaks shots down by lie, club and distance
type ShotPatterns struct {
	PreferredLies         []Count        `json:"preferred_lies"`
	ClubDistributionByLie []LieClubs     `json:"club_distribution_by_lie"`
	DistanceRanges        DistanceRanges `json:"distance_ranges"`
}

// AnalyzeShotPatterns counts shots per lie, clubs per lie and shots per
// distance bucket. Lies and clubs are listed in the order first seen.
func AnalyzeShotPatterns(shots []shot.Shot) ShotPatterns {
	lies := newTally()
	clubsByLie := make(map[string]*tally)
	var ranges DistanceRanges

	for _, s := range shots {
		lie := string(s.Lie)
		lies.add(lie)

		clubs, ok := clubsByLie[lie]
		if !ok {
			clubs = newTally()
			clubsByLie[lie] = clubs
		}
		clubs.add(s.Club)

		switch {
		case s.Distance < ShortShotMax:
			ranges.Short++
		case s.Distance < MediumShotMax:
			ranges.Medium++
		default:
			ranges.Long++
		}
	}

	byLie := make([]LieClubs, 0, len(lies.order))
	for _, lie := range lies.order {
		byLie = append(byLie, LieClubs{Lie: lie, Clubs: clubsByLie[lie].entries()})
	}

	return ShotPatterns{
		PreferredLies:         lies.entries(),
		ClubDistributionByLie: byLie,
		DistanceRanges:        ranges,
	}
}
