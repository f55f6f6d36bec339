package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuartshay/shot-tracker/internal/calculator"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

func testRound() (shot.Round, []shot.Shot) {
	played := time.Date(2026, 6, 14, 13, 0, 0, 0, time.UTC)
	round := shot.Round{ID: "r1", CourseID: "c1", CourseName: "Liberty National", PlayedAt: played}
	shots := []shot.Shot{
		{ID: "s1", RoundID: "r1", HoleNumber: 1, ShotNumber: 1, Club: "Driver", Lie: shot.LieFairway, Distance: 250,
			Coordinates: calculator.Coordinate{Latitude: 40.002, Longitude: -74.0}, Timestamp: played},
		{ID: "s2", RoundID: "r1", HoleNumber: 1, ShotNumber: 2, Club: "Driver", Lie: shot.LieRough, Distance: 180,
			Coordinates: calculator.Coordinate{Latitude: 40.0035, Longitude: -74.0005}, Timestamp: played.Add(4 * time.Minute)},
		{ID: "s3", RoundID: "r1", HoleNumber: 2, ShotNumber: 1, Club: "7-Iron", Lie: shot.LieGreen, Distance: 120,
			Coordinates: calculator.Coordinate{Latitude: 40.005, Longitude: -74.001}, Timestamp: played.Add(15 * time.Minute)},
	}
	return round, shots
}

func readRecords(t *testing.T, data []byte) [][]string {
	t.Helper()

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func find(records [][]string, key string) []string {
	for _, rec := range records {
		if len(rec) > 0 && rec[0] == key {
			return rec
		}
	}
	return nil
}

func TestWrite(t *testing.T) {
	round, shots := testRound()

	var buf bytes.Buffer
	summary, err := Write(&buf, round, shots)
	require.NoError(t, err)

	records := readRecords(t, buf.Bytes())
	require.NotEmpty(t, records)

	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{
		"2026-06-14T13:00:00Z", "1", "1", "Driver", "fairway", "250", "40.002000", "-74.000000",
	}, records[1])
	assert.Equal(t, "7-Iron", records[3][3])

	assert.Equal(t, []string{"Total Shots", "3"}, find(records, "Total Shots"))
	assert.Equal(t, []string{"Average Distance (yd)", "183"}, find(records, "Average Distance (yd)"))
	assert.Equal(t, []string{"Accuracy (%)", "67"}, find(records, "Accuracy (%)"))
	assert.Equal(t, []string{"Most Used Club", "Driver"}, find(records, "Most Used Club"))
	assert.Equal(t, []string{"Course", "Liberty National"}, find(records, "Course"))

	// club footer rows have 7 fields, shot rows have 8
	clubRows := 0
	for _, rec := range records {
		if len(rec) == 7 && (rec[0] == "Driver" || rec[0] == "7-Iron") {
			clubRows++
		}
	}
	assert.Equal(t, 2, clubRows)

	assert.Equal(t, 3, summary.Stats.TotalShots)
	require.Len(t, summary.Clubs, 2)
	assert.Equal(t, "Driver", summary.Clubs[0].Club)
}

func TestWrite_Scorecard(t *testing.T) {
	round, shots := testRound()

	var buf bytes.Buffer
	_, err := Write(&buf, round, shots)
	require.NoError(t, err)
	assert.Nil(t, find(readRecords(t, buf.Bytes()), "Score"), "no scorecard rows without scores")

	round.Scores = []shot.ScoreEntry{
		{HoleNumber: 1, Par: 4, Score: 5, Putts: 2},
		{HoleNumber: 2, Par: 3, Score: 3, Putts: 1},
		{HoleNumber: 3, Par: 5},
	}
	buf.Reset()
	_, err = Write(&buf, round, shots)
	require.NoError(t, err)

	records := readRecords(t, buf.Bytes())
	assert.Equal(t, []string{"Score", "8"}, find(records, "Score"))
	assert.Equal(t, []string{"To Par", "-4"}, find(records, "To Par"))
	assert.Equal(t, []string{"Holes Completed", "2/3"}, find(records, "Holes Completed"))
}

func TestWrite_NoShots(t *testing.T) {
	var buf bytes.Buffer
	summary, err := Write(&buf, shot.Round{ID: "empty"}, nil)
	require.NoError(t, err)

	records := readRecords(t, buf.Bytes())
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"Total Shots", "0"}, find(records, "Total Shots"))
	assert.Empty(t, summary.Clubs)
}

func TestWriteFile(t *testing.T) {
	round, shots := testRound()
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	path, summary, err := WriteFile(dir, round, shots)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "round_r1.csv"), path)
	assert.Equal(t, 67, summary.Stats.Accuracy)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records := readRecords(t, data)
	assert.Equal(t, []string{"Round", "r1"}, find(records, "Round"))
}

func TestWriteFile_BadDirectory(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, _, err := WriteFile(filepath.Join(blocker, "sub"), shot.Round{ID: "r1"}, nil)
	assert.Error(t, err)
}

func TestWriteFile_RejectsEscapingRoundID(t *testing.T) {
	round, shots := testRound()
	base := t.TempDir()
	dir := filepath.Join(base, "reports")

	for _, id := range []string{"x/../../escaped", "../outside", "nested/dir"} {
		t.Run(id, func(t *testing.T) {
			round.ID = id
			path, _, err := WriteFile(dir, round, shots)
			require.Error(t, err)
			assert.Empty(t, path)
		})
	}

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written for rejected ids")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "round_abc-123.csv", Filename("abc-123"))
}
