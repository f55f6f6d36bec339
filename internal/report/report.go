// Package report renders round reports as CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stuartshay/shot-tracker/internal/analytics"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

var header = []string{
	"timestamp", "hole_number", "shot_number", "club", "lie",
	"distance_yards", "latitude", "longitude",
}

// Summary is the aggregate written to a report footer
type Summary struct {
	Stats analytics.ShotStats
	Clubs []analytics.ClubPerformance
}

// Filename returns the report file name for a round
func Filename(roundID string) string {
	return fmt.Sprintf("round_%s.csv", roundID)
}

// WriteFile writes the report for a round into dir and returns its path.
// The report must land directly in dir; round IDs that would resolve
// elsewhere are rejected.
func WriteFile(dir string, round shot.Round, shots []shot.Shot) (string, Summary, error) {
	csvPath := filepath.Join(dir, Filename(round.ID))
	if filepath.Dir(csvPath) != filepath.Clean(dir) {
		return "", Summary{}, fmt.Errorf("round id %q escapes the report directory", round.ID)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(csvPath)
	if err != nil {
		return "", Summary{}, fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("csv_path", csvPath).Msg("Failed to close CSV file")
		}
	}()

	summary, err := Write(file, round, shots)
	if err != nil {
		return "", Summary{}, err
	}

	log.Info().Str("csv_path", csvPath).Int("shots", len(shots)).Msg("Round report generated")

	return csvPath, summary, nil
}

// Write renders one row per shot followed by a stats and per-club footer.
// Rounds with a scorecard also get their score totals in the footer.
func Write(w io.Writer, round shot.Round, shots []shot.Shot) (Summary, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return Summary{}, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range shots {
		row := []string{
			s.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(s.HoleNumber),
			strconv.Itoa(s.ShotNumber),
			s.Club,
			string(s.Lie),
			strconv.Itoa(s.Distance),
			fmt.Sprintf("%.6f", s.Coordinates.Latitude),
			fmt.Sprintf("%.6f", s.Coordinates.Longitude),
		}

		if err := writer.Write(row); err != nil {
			return Summary{}, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	summary := Summary{
		Stats: analytics.CalculateShotStats(shots),
		Clubs: analytics.AnalyzeClubPerformance(shots),
	}

	footer := [][]string{
		{},
		{"Summary"},
		{"Round", round.ID},
		{"Course", round.CourseName},
		{"Total Shots", strconv.Itoa(summary.Stats.TotalShots)},
		{"Average Distance (yd)", strconv.Itoa(summary.Stats.AverageDistance)},
		{"Accuracy (%)", strconv.Itoa(summary.Stats.Accuracy)},
		{"Most Used Club", summary.Stats.MostUsedClub},
		{"Best Hole", strconv.Itoa(summary.Stats.BestHole)},
		{"Worst Hole", strconv.Itoa(summary.Stats.WorstHole)},
	}
	if len(round.Scores) > 0 {
		card := shot.Summarize(round.Scores)
		footer = append(footer,
			[]string{"Score", strconv.Itoa(card.TotalScore)},
			[]string{"To Par", card.ScoreToParLabel},
			[]string{"Holes Completed", fmt.Sprintf("%d/%d", card.HolesCompleted, card.TotalHoles)},
		)
	}
	footer = append(footer,
		[]string{},
		[]string{"club", "usage", "avg_distance", "min_distance", "max_distance", "accuracy", "consistency"},
	)
	for _, c := range summary.Clubs {
		footer = append(footer, []string{
			c.Club,
			strconv.Itoa(c.Usage),
			strconv.Itoa(c.AvgDistance),
			strconv.Itoa(c.MinDistance),
			strconv.Itoa(c.MaxDistance),
			strconv.Itoa(c.Accuracy),
			strconv.Itoa(c.Consistency),
		})
	}

	if err := writer.WriteAll(footer); err != nil {
		return Summary{}, fmt.Errorf("failed to write CSV summary: %w", err)
	}

	return summary, nil
}
