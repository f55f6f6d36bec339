package grpc

import (
	"time"

	"github.com/stuartshay/shot-tracker/internal/analytics"
	"github.com/stuartshay/shot-tracker/internal/calculator"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

// PositionOptions tunes a device position request. Zero values fall back
// to the server defaults.
type PositionOptions struct {
	MaximumAgeMS       int64 `json:"maximum_age_ms,omitempty"`
	TimeoutMS          int64 `json:"timeout_ms,omitempty"`
	EnableHighAccuracy *bool `json:"enable_high_accuracy,omitempty"`
}

// ShotQuery selects the shots an analytics operation runs over
type ShotQuery struct {
	RoundID    string    `json:"round_id,omitempty"`
	CourseID   string    `json:"course_id,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
	HoleNumber int       `json:"hole_number,omitempty"`
	Clubs      []string  `json:"clubs,omitempty"`
	Since      time.Time `json:"since,omitzero"`
}

type CalculateDistanceRequest struct {
	From calculator.Coordinate `json:"from"`
	To   calculator.Coordinate `json:"to"`
}

type CalculateDistanceResponse struct {
	Yards  int     `json:"yards"`
	Meters float64 `json:"meters"`
}

type GetHoleDistancesRequest struct {
	DeviceID   string           `json:"device_id"`
	CourseID   string           `json:"course_id"`
	HoleNumber int              `json:"hole_number"`
	Position   *PositionOptions `json:"position,omitempty"`
}

type GetHoleDistancesResponse struct {
	Position calculator.Coordinate `json:"position"`
	ToTee    int                   `json:"to_tee"`
	ToGreen  int                   `json:"to_green"`
}

// RecordShotRequest records a shot at Coordinates, or at the device's
// current position when Coordinates is nil.
type RecordShotRequest struct {
	RoundID     string                 `json:"round_id"`
	HoleNumber  int                    `json:"hole_number"`
	Club        string                 `json:"club"`
	Lie         string                 `json:"lie"`
	Coordinates *calculator.Coordinate `json:"coordinates,omitempty"`
	DeviceID    string                 `json:"device_id,omitempty"`
	Position    *PositionOptions       `json:"position,omitempty"`
	Timestamp   time.Time              `json:"timestamp,omitzero"`
}

type RecordShotResponse struct {
	Shot shot.Shot `json:"shot"`
}

type ListShotsRequest struct {
	Query ShotQuery `json:"query"`
}

type ListShotsResponse struct {
	Shots []shot.Shot `json:"shots"`
}

type GetShotStatsRequest struct {
	Query ShotQuery `json:"query"`
}

type GetShotStatsResponse struct {
	Stats analytics.ShotStats `json:"stats"`
}

type AnalyzeClubPerformanceRequest struct {
	Query ShotQuery `json:"query"`
}

type AnalyzeClubPerformanceResponse struct {
	Clubs []analytics.ClubPerformance `json:"clubs"`
}

type GetHeatMapRequest struct {
	Query    ShotQuery `json:"query"`
	GridSize int       `json:"grid_size,omitempty"`
}

type GetHeatMapResponse struct {
	Points []analytics.HeatMapPoint `json:"points"`
	Bounds *analytics.BoundingBox   `json:"bounds,omitempty"`
}

type AnalyzeShotPatternsRequest struct {
	Query ShotQuery `json:"query"`
}

type AnalyzeShotPatternsResponse struct {
	Patterns analytics.ShotPatterns `json:"patterns"`
}

type GetPerformanceTrendsRequest struct {
	Query  ShotQuery `json:"query"`
	Window string    `json:"window,omitempty"`
}

type GetPerformanceTrendsResponse struct {
	Trends analytics.PerformanceTrends `json:"trends"`
}

// GetHolePerformanceRequest requires Query.CourseID to resolve the holes
type GetHolePerformanceRequest struct {
	Query ShotQuery `json:"query"`
}

type GetHolePerformanceResponse struct {
	Holes []analytics.HolePerformance `json:"holes"`
}

type GetTrajectoryRequest struct {
	RoundID    string `json:"round_id"`
	HoleNumber int    `json:"hole_number"`
}

type GetTrajectoryResponse struct {
	Segments   []shot.Segment `json:"segments"`
	TotalYards int            `json:"total_yards"`
	LongestLeg int            `json:"longest_leg"`
}

// CreateRoundRequest starts a round. Course, when set, is saved first and
// its ID is used as CourseID.
type CreateRoundRequest struct {
	RoundID  string       `json:"round_id,omitempty"`
	CourseID string       `json:"course_id,omitempty"`
	DeviceID string       `json:"device_id,omitempty"`
	PlayedAt time.Time    `json:"played_at,omitzero"`
	Course   *shot.Course `json:"course,omitempty"`
}

type CreateRoundResponse struct {
	Round shot.Round `json:"round"`
}

type ListCoursesRequest struct{}

type ListCoursesResponse struct {
	Courses []shot.Course `json:"courses"`
}

type ListRoundsRequest struct {
	DeviceID string `json:"device_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// RoundSummary is a round with its scorecard totals
type RoundSummary struct {
	Round           shot.Round `json:"round"`
	TotalScore      int        `json:"total_score"`
	ScoreToPar      int        `json:"score_to_par"`
	ScoreToParLabel string     `json:"score_to_par_label"`
	HolesCompleted  int        `json:"holes_completed"`
	TotalHoles      int        `json:"total_holes"`
}

type ListRoundsResponse struct {
	Rounds []RoundSummary `json:"rounds"`
}

// UpdateScoreRequest changes one hole of a round's scorecard. Omitted fields
// keep their value; a zero score clears the hole.
type UpdateScoreRequest struct {
	RoundID           string `json:"round_id"`
	HoleNumber        int    `json:"hole_number"`
	Score             *int   `json:"score,omitempty"`
	Putts             *int   `json:"putts,omitempty"`
	FairwayHit        *bool  `json:"fairway_hit,omitempty"`
	GreenInRegulation *bool  `json:"green_in_regulation,omitempty"`
}

type UpdateScoreResponse struct {
	Scorecard shot.Scorecard `json:"scorecard"`
}

type GetScorecardRequest struct {
	RoundID string `json:"round_id"`
}

type GetScorecardResponse struct {
	RoundID    string         `json:"round_id"`
	CourseName string         `json:"course_name"`
	Scorecard  shot.Scorecard `json:"scorecard"`
}

type GenerateRoundReportRequest struct {
	RoundID string `json:"round_id"`
}

type GenerateRoundReportResponse struct {
	JobID    string    `json:"job_id"`
	Status   string    `json:"status"`
	QueuedAt time.Time `json:"queued_at"`
}

type GetJobStatusRequest struct {
	JobID string `json:"job_id"`
}

// ReportResult is the outcome of a completed report job
type ReportResult struct {
	CSVPath          string `json:"csv_path"`
	TotalShots       int    `json:"total_shots"`
	AverageDistance  int    `json:"average_distance"`
	Accuracy         int    `json:"accuracy"`
	MostUsedClub     string `json:"most_used_club"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

type GetJobStatusResponse struct {
	JobID        string        `json:"job_id"`
	RoundID      string        `json:"round_id"`
	Status       string        `json:"status"`
	QueuedAt     time.Time     `json:"queued_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       *ReportResult `json:"result,omitempty"`
}

type ListJobsRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type JobSummary struct {
	JobID       string     `json:"job_id"`
	RoundID     string     `json:"round_id"`
	Status      string     `json:"status"`
	QueuedAt    time.Time  `json:"queued_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ListJobsResponse struct {
	Jobs       []JobSummary `json:"jobs"`
	TotalCount int          `json:"total_count"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
