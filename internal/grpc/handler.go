// Package grpc implements the ShotService gRPC server: shot recording,
// analytics over stored shots, and asynchronous round report jobs.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stuartshay/shot-tracker/internal/analytics"
	"github.com/stuartshay/shot-tracker/internal/calculator"
	"github.com/stuartshay/shot-tracker/internal/config"
	"github.com/stuartshay/shot-tracker/internal/database"
	"github.com/stuartshay/shot-tracker/internal/metrics"
	"github.com/stuartshay/shot-tracker/internal/position"
	"github.com/stuartshay/shot-tracker/internal/queue"
	"github.com/stuartshay/shot-tracker/internal/report"
	"github.com/stuartshay/shot-tracker/internal/shot"
	"github.com/stuartshay/shot-tracker/internal/tracing"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// maxRecordAttempts bounds retries when another writer takes the shot number
	maxRecordAttempts = 2
)

// Store is the persistence used by the server
type Store interface {
	SaveCourse(ctx context.Context, course shot.Course) error
	GetCourse(ctx context.Context, courseID string) (shot.Course, error)
	ListCourses(ctx context.Context) ([]shot.Course, error)
	GetHole(ctx context.Context, courseID string, holeNumber int) (shot.Hole, error)
	GetHoles(ctx context.Context, courseID string) ([]shot.Hole, error)
	SaveRound(ctx context.Context, round shot.Round) error
	GetRound(ctx context.Context, roundID string) (shot.Round, error)
	ListRounds(ctx context.Context, deviceID string, limit int) ([]shot.Round, error)
	SaveScore(ctx context.Context, roundID string, entry shot.ScoreEntry) error
	SaveShot(ctx context.Context, s shot.Shot) error
	GetShots(ctx context.Context, filter database.ShotFilter) ([]shot.Shot, error)
}

// Locator acquires the current position of a device
type Locator interface {
	GetCurrentPosition(ctx context.Context, deviceID string, opts ...position.Option) (calculator.Coordinate, error)
}

// Server implements ShotServiceServer
type Server struct {
	cfg     *config.Config
	store   Store
	locator Locator
	metrics *metrics.Metrics
	queue   *queue.Queue

	// recordMu serializes shot numbering within RecordShot
	recordMu sync.Mutex
	// scoreMu serializes scorecard read-modify-write in UpdateScore
	scoreMu sync.Mutex
}

// NewServer creates a new gRPC server instance and starts its report workers
func NewServer(cfg *config.Config, store Store, locator Locator, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		locator: locator,
		metrics: m,
	}

	s.queue = queue.NewQueue(cfg.ReportWorkers, s.processReportJob,
		queue.WithCapacity(cfg.ReportQueueCapacity),
		queue.WithStatusHook(m.ObserveJob),
	)

	return s
}

var _ ShotServiceServer = (*Server)(nil)

// CalculateDistance returns the great-circle distance between two coordinates
func (s *Server) CalculateDistance(_ context.Context, req *CalculateDistanceRequest) (*CalculateDistanceResponse, error) {
	return &CalculateDistanceResponse{
		Yards:  calculator.Distance(req.From, req.To),
		Meters: calculator.Haversine(req.From.Latitude, req.From.Longitude, req.To.Latitude, req.To.Longitude),
	}, nil
}

// GetHoleDistances locates a device and measures it against a hole's tee and green
func (s *Server) GetHoleDistances(ctx context.Context, req *GetHoleDistancesRequest) (*GetHoleDistancesResponse, error) {
	if req.DeviceID == "" {
		return nil, status.Error(codes.InvalidArgument, "device_id is required")
	}
	if req.CourseID == "" || req.HoleNumber <= 0 {
		return nil, status.Error(codes.InvalidArgument, "course_id and a positive hole_number are required")
	}

	hole, err := s.store.GetHole(ctx, req.CourseID, req.HoleNumber)
	if err != nil {
		return nil, toStatus(err)
	}

	coord, err := s.locate(ctx, req.DeviceID, req.Position)
	if err != nil {
		return nil, toStatus(err)
	}

	d := shot.HoleDistances(coord, hole)
	return &GetHoleDistancesResponse{
		Position: coord,
		ToTee:    d.ToTee,
		ToGreen:  d.ToGreen,
	}, nil
}

// RecordShot stores a shot, deriving its distance from the previous shot
// on the hole or from the tee.
func (s *Server) RecordShot(ctx context.Context, req *RecordShotRequest) (*RecordShotResponse, error) {
	if req.RoundID == "" {
		return nil, status.Error(codes.InvalidArgument, "round_id is required")
	}
	if req.HoleNumber <= 0 {
		return nil, status.Error(codes.InvalidArgument, "hole_number must be positive")
	}
	if strings.TrimSpace(req.Club) == "" {
		return nil, status.Error(codes.InvalidArgument, "club is required")
	}
	lie, err := shot.ParseLie(req.Lie)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	round, err := s.store.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, toStatus(err)
	}

	hole, err := s.store.GetHole(ctx, round.CourseID, req.HoleNumber)
	if err != nil {
		return nil, toStatus(err)
	}

	source := "explicit"
	var coord calculator.Coordinate
	if req.Coordinates != nil {
		coord = *req.Coordinates
	} else {
		deviceID := req.DeviceID
		if deviceID == "" {
			deviceID = round.DeviceID
		}
		if deviceID == "" {
			return nil, status.Error(codes.InvalidArgument, "coordinates or device_id is required")
		}
		if coord, err = s.locate(ctx, deviceID, req.Position); err != nil {
			return nil, toStatus(err)
		}
		source = "device"
	}

	placement := shot.Placement{
		RoundID:     round.ID,
		Club:        strings.TrimSpace(req.Club),
		Lie:         lie,
		Coordinates: coord,
		Timestamp:   req.Timestamp,
	}

	var recorded shot.Shot
	for attempt := 1; ; attempt++ {
		recorded, err = s.saveNextShot(ctx, hole, placement)
		if err == nil || !errors.Is(err, database.ErrConflict) || attempt == maxRecordAttempts {
			break
		}
		log.Warn().Err(err).
			Str("round_id", round.ID).
			Int("hole", hole.HoleNumber).
			Msg("Shot number taken by another writer, retrying")
	}
	if err != nil {
		return nil, toStatus(err)
	}

	s.metrics.ShotsRecorded.WithLabelValues(source).Inc()

	log.Info().
		Str("round_id", round.ID).
		Int("hole", recorded.HoleNumber).
		Int("shot", recorded.ShotNumber).
		Str("club", recorded.Club).
		Int("distance", recorded.Distance).
		Str("source", source).
		Msg("Shot recorded")

	return &RecordShotResponse{Shot: recorded}, nil
}

// saveNextShot numbers a shot after the ones already stored on the hole and saves it
func (s *Server) saveNextShot(ctx context.Context, hole shot.Hole, p shot.Placement) (shot.Shot, error) {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()

	prior, err := s.store.GetShots(ctx, database.ShotFilter{RoundID: p.RoundID, HoleNumber: hole.HoleNumber})
	if err != nil {
		return shot.Shot{}, err
	}

	recorded := shot.NewShot(hole, prior, p, s.cfg.MaxShotDistanceYards)
	if err := s.store.SaveShot(ctx, recorded); err != nil {
		return shot.Shot{}, err
	}
	return recorded, nil
}

// ListShots returns stored shots matching the query in play order
func (s *Server) ListShots(ctx context.Context, req *ListShotsRequest) (*ListShotsResponse, error) {
	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return &ListShotsResponse{Shots: shots}, nil
}

// GetShotStats summarizes the queried shots
func (s *Server) GetShotStats(ctx context.Context, req *GetShotStatsRequest) (*GetShotStatsResponse, error) {
	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("shot_stats", time.Now())

	return &GetShotStatsResponse{Stats: analytics.CalculateShotStats(shots)}, nil
}

// AnalyzeClubPerformance reports per-club distance, accuracy and consistency
func (s *Server) AnalyzeClubPerformance(ctx context.Context, req *AnalyzeClubPerformanceRequest) (*AnalyzeClubPerformanceResponse, error) {
	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("club_performance", time.Now())

	clubs := analytics.AnalyzeClubPerformance(shots)
	if clubs == nil {
		clubs = []analytics.ClubPerformance{}
	}
	return &AnalyzeClubPerformanceResponse{Clubs: clubs}, nil
}

// GetHeatMap buckets the queried shots into a grid over their bounding box
func (s *Server) GetHeatMap(ctx context.Context, req *GetHeatMapRequest) (*GetHeatMapResponse, error) {
	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("heat_map", time.Now())

	gridSize := req.GridSize
	if gridSize <= 0 {
		gridSize = s.cfg.HeatMapGridSize
	}

	resp := &GetHeatMapResponse{Points: analytics.GenerateHeatMapData(shots, gridSize)}
	if bounds, ok := analytics.ComputeBoundingBox(shots); ok {
		resp.Bounds = &bounds
	}
	return resp, nil
}

// AnalyzeShotPatterns breaks the queried shots down by lie, club and distance
func (s *Server) AnalyzeShotPatterns(ctx context.Context, req *AnalyzeShotPatternsRequest) (*AnalyzeShotPatternsResponse, error) {
	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("shot_patterns", time.Now())

	return &AnalyzeShotPatternsResponse{Patterns: analytics.AnalyzeShotPatterns(shots)}, nil
}

// GetPerformanceTrends compares the latest window of shots with the one before
func (s *Server) GetPerformanceTrends(ctx context.Context, req *GetPerformanceTrendsRequest) (*GetPerformanceTrendsResponse, error) {
	window, err := analytics.ParseWindow(req.Window)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("performance_trends", time.Now())

	return &GetPerformanceTrendsResponse{Trends: analytics.CalculatePerformanceTrends(shots, window)}, nil
}

// GetHolePerformance summarizes plays per hole of a course
func (s *Server) GetHolePerformance(ctx context.Context, req *GetHolePerformanceRequest) (*GetHolePerformanceResponse, error) {
	if req.Query.CourseID == "" {
		return nil, status.Error(codes.InvalidArgument, "query.course_id is required")
	}

	holes, err := s.store.GetHoles(ctx, req.Query.CourseID)
	if err != nil {
		return nil, toStatus(err)
	}

	shots, err := s.loadShots(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	defer s.metrics.ObserveAnalytics("hole_performance", time.Now())

	perf := analytics.AnalyzeHolePerformance(shots, holes)
	if perf == nil {
		perf = []analytics.HolePerformance{}
	}
	return &GetHolePerformanceResponse{Holes: perf}, nil
}

// GetTrajectory returns the tee to green legs of one hole of a round
func (s *Server) GetTrajectory(ctx context.Context, req *GetTrajectoryRequest) (*GetTrajectoryResponse, error) {
	if req.RoundID == "" || req.HoleNumber <= 0 {
		return nil, status.Error(codes.InvalidArgument, "round_id and a positive hole_number are required")
	}

	round, err := s.store.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, toStatus(err)
	}

	hole, err := s.store.GetHole(ctx, round.CourseID, req.HoleNumber)
	if err != nil {
		return nil, toStatus(err)
	}

	shots, err := s.store.GetShots(ctx, database.ShotFilter{RoundID: round.ID, HoleNumber: hole.HoleNumber})
	if err != nil {
		return nil, toStatus(err)
	}

	segments := shot.Trajectory(hole, shots)

	path := make([]calculator.Coordinate, 0, len(segments)+1)
	path = append(path, segments[0].From)
	for _, seg := range segments {
		path = append(path, seg.To)
	}
	legs := calculator.CalculateMetrics(path)

	return &GetTrajectoryResponse{
		Segments:   segments,
		TotalYards: legs.TotalYards,
		LongestLeg: legs.MaxLegYards,
	}, nil
}

// CreateRound starts a round on a stored course, saving the course first when
// given. The round's scorecard holds one unscored entry per hole.
func (s *Server) CreateRound(ctx context.Context, req *CreateRoundRequest) (*CreateRoundResponse, error) {
	if req.RoundID != "" {
		if err := shot.ValidateID("round", req.RoundID); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	courseID := req.CourseID
	if req.Course != nil {
		if err := validateCourse(req.Course); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if err := s.store.SaveCourse(ctx, *req.Course); err != nil {
			return nil, toStatus(err)
		}
		courseID = req.Course.ID
	}
	if courseID == "" {
		return nil, status.Error(codes.InvalidArgument, "course_id or course is required")
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, toStatus(err)
	}

	round := shot.Round{
		ID:         req.RoundID,
		CourseID:   course.ID,
		CourseName: course.Name,
		DeviceID:   req.DeviceID,
		PlayedAt:   req.PlayedAt,
		Scores:     shot.NewScorecard(course.Holes),
	}
	if round.ID == "" {
		round.ID = uuid.New().String()
	}
	if round.PlayedAt.IsZero() {
		round.PlayedAt = time.Now().UTC()
	}

	if err := s.store.SaveRound(ctx, round); err != nil {
		return nil, toStatus(err)
	}

	log.Info().
		Str("round_id", round.ID).
		Str("course_id", round.CourseID).
		Str("device_id", round.DeviceID).
		Msg("Round created")

	return &CreateRoundResponse{Round: round}, nil
}

// ListCourses returns every stored course with its holes
func (s *Server) ListCourses(ctx context.Context, _ *ListCoursesRequest) (*ListCoursesResponse, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if courses == nil {
		courses = []shot.Course{}
	}
	return &ListCoursesResponse{Courses: courses}, nil
}

// ListRounds returns rounds newest first with their scorecard totals
func (s *Server) ListRounds(ctx context.Context, req *ListRoundsRequest) (*ListRoundsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rounds, err := s.store.ListRounds(ctx, req.DeviceID, limit)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ListRoundsResponse{Rounds: make([]RoundSummary, 0, len(rounds))}
	for _, r := range rounds {
		card := shot.Summarize(r.Scores)
		resp.Rounds = append(resp.Rounds, RoundSummary{
			Round:           r,
			TotalScore:      card.TotalScore,
			ScoreToPar:      card.ScoreToPar,
			ScoreToParLabel: card.ScoreToParLabel,
			HolesCompleted:  card.HolesCompleted,
			TotalHoles:      card.TotalHoles,
		})
	}
	return resp, nil
}

// UpdateScore changes one hole's scorecard entry and returns the updated card
func (s *Server) UpdateScore(ctx context.Context, req *UpdateScoreRequest) (*UpdateScoreResponse, error) {
	if req.RoundID == "" || req.HoleNumber <= 0 {
		return nil, status.Error(codes.InvalidArgument, "round_id and a positive hole_number are required")
	}

	s.scoreMu.Lock()
	defer s.scoreMu.Unlock()

	round, err := s.store.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, toStatus(err)
	}

	entry, ok := round.Score(req.HoleNumber)
	if !ok {
		course, err := s.store.GetCourse(ctx, round.CourseID)
		if err != nil {
			return nil, toStatus(err)
		}
		hole, ok := course.Hole(req.HoleNumber)
		if !ok {
			return nil, status.Errorf(codes.NotFound, "course %s has no hole %d", course.ID, req.HoleNumber)
		}
		entry = shot.ScoreEntry{HoleNumber: hole.HoleNumber, Par: hole.Par}
	}

	updated, err := shot.ScoreUpdate{
		HoleNumber:        req.HoleNumber,
		Score:             req.Score,
		Putts:             req.Putts,
		FairwayHit:        req.FairwayHit,
		GreenInRegulation: req.GreenInRegulation,
	}.Apply(entry)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.store.SaveScore(ctx, round.ID, updated); err != nil {
		return nil, toStatus(err)
	}
	round.SetScore(updated)

	log.Info().
		Str("round_id", round.ID).
		Int("hole", updated.HoleNumber).
		Int("score", updated.Score).
		Int("putts", updated.Putts).
		Msg("Score updated")

	return &UpdateScoreResponse{Scorecard: shot.Summarize(round.Scores)}, nil
}

// GetScorecard returns a round's scorecard with its totals
func (s *Server) GetScorecard(ctx context.Context, req *GetScorecardRequest) (*GetScorecardResponse, error) {
	if req.RoundID == "" {
		return nil, status.Error(codes.InvalidArgument, "round_id is required")
	}

	round, err := s.store.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &GetScorecardResponse{
		RoundID:    round.ID,
		CourseName: round.CourseName,
		Scorecard:  shot.Summarize(round.Scores),
	}, nil
}

// GenerateRoundReport queues an asynchronous CSV report for a round
func (s *Server) GenerateRoundReport(ctx context.Context, req *GenerateRoundReportRequest) (*GenerateRoundReportResponse, error) {
	if req.RoundID == "" {
		return nil, status.Error(codes.InvalidArgument, "round_id is required")
	}

	if _, err := s.store.GetRound(ctx, req.RoundID); err != nil {
		return nil, toStatus(err)
	}

	jobID, err := s.queue.Enqueue(req.RoundID)
	if err != nil {
		log.Error().Err(err).Str("round_id", req.RoundID).Msg("Failed to enqueue report job")
		return nil, toStatus(err)
	}

	job, err := s.queue.GetJob(jobID)
	if err != nil {
		return nil, toStatus(err)
	}

	log.Info().Str("job_id", jobID).Str("round_id", req.RoundID).Msg("Report job queued")

	return &GenerateRoundReportResponse{
		JobID:    job.ID,
		Status:   string(queue.StatusQueued),
		QueuedAt: job.QueuedAt,
	}, nil
}

// GetJobStatus returns the current status of a report job
func (s *Server) GetJobStatus(_ context.Context, req *GetJobStatusRequest) (*GetJobStatusResponse, error) {
	if req.JobID == "" {
		return nil, status.Error(codes.InvalidArgument, "job_id is required")
	}

	job, err := s.queue.GetJob(req.JobID)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &GetJobStatusResponse{
		JobID:        job.ID,
		RoundID:      job.RoundID,
		Status:       string(job.Status),
		QueuedAt:     job.QueuedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
	}

	if job.Result != nil {
		resp.Result = &ReportResult{
			CSVPath:          job.Result.CSVPath,
			TotalShots:       job.Result.TotalShots,
			AverageDistance:  job.Result.AverageDistance,
			Accuracy:         job.Result.Accuracy,
			MostUsedClub:     job.Result.MostUsedClub,
			ProcessingTimeMS: job.Result.ProcessingTimeMS,
		}
	}

	return resp, nil
}

// ListJobs returns report jobs, newest first, with optional status filtering
func (s *Server) ListJobs(_ context.Context, req *ListJobsRequest) (*ListJobsResponse, error) {
	jobStatus := queue.JobStatus(req.Status)
	switch jobStatus {
	case "", queue.StatusQueued, queue.StatusProcessing, queue.StatusCompleted, queue.StatusFailed:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown job status %q", req.Status)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	jobs, total := s.queue.ListJobs(jobStatus, limit, offset)

	resp := &ListJobsResponse{
		Jobs:       make([]JobSummary, 0, len(jobs)),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}

	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, JobSummary{
			JobID:       job.ID,
			RoundID:     job.RoundID,
			Status:      string(job.Status),
			QueuedAt:    job.QueuedAt,
			CompletedAt: job.CompletedAt,
		})
	}

	return resp, nil
}

// processReportJob is the worker function that renders a round report
func (s *Server) processReportJob(ctx context.Context, job *queue.Job) (*queue.JobResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "report.GenerateRoundReport",
		trace.WithAttributes(
			attribute.String("job.id", job.ID),
			attribute.String("round.id", job.RoundID),
		))
	defer span.End()

	log.Info().
		Str("job_id", job.ID).
		Str("round_id", job.RoundID).
		Msg("Processing round report job")

	result, err := s.buildReport(ctx, job.RoundID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("report.shots", result.TotalShots))
	return result, nil
}

func (s *Server) buildReport(ctx context.Context, roundID string) (*queue.JobResult, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}

	shots, err := s.store.GetShots(ctx, database.ShotFilter{RoundID: roundID})
	if err != nil {
		return nil, fmt.Errorf("load shots: %w", err)
	}

	if len(shots) == 0 {
		log.Warn().Str("round_id", roundID).Msg("No shots recorded for round")
		return nil, fmt.Errorf("no shots recorded for round %s", roundID)
	}

	csvPath, summary, err := report.WriteFile(s.cfg.ReportOutputPath, round, shots)
	if err != nil {
		return nil, fmt.Errorf("CSV generation failed: %w", err)
	}

	return &queue.JobResult{
		CSVPath:         csvPath,
		TotalShots:      summary.Stats.TotalShots,
		AverageDistance: summary.Stats.AverageDistance,
		Accuracy:        summary.Stats.Accuracy,
		MostUsedClub:    summary.Stats.MostUsedClub,
	}, nil
}

// locate acquires a device position, recording the outcome as a span and metric
func (s *Server) locate(ctx context.Context, deviceID string, opts *PositionOptions) (calculator.Coordinate, error) {
	ctx, span := tracing.Tracer().Start(ctx, "position.GetCurrentPosition",
		trace.WithAttributes(attribute.String("device.id", deviceID)))
	defer span.End()

	coord, err := s.locator.GetCurrentPosition(ctx, deviceID, positionOptions(opts)...)
	s.metrics.ObservePosition(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		log.Warn().Err(err).Str("device_id", deviceID).Msg("Position request failed")
		return calculator.Coordinate{}, err
	}

	return coord, nil
}

func positionOptions(o *PositionOptions) []position.Option {
	if o == nil {
		return nil
	}

	var opts []position.Option
	if o.MaximumAgeMS > 0 {
		opts = append(opts, position.WithMaximumAge(time.Duration(o.MaximumAgeMS)*time.Millisecond))
	}
	if o.TimeoutMS > 0 {
		opts = append(opts, position.WithTimeout(time.Duration(o.TimeoutMS)*time.Millisecond))
	}
	if o.EnableHighAccuracy != nil {
		opts = append(opts, position.WithHighAccuracy(*o.EnableHighAccuracy))
	}
	return opts
}

func (s *Server) loadShots(ctx context.Context, q ShotQuery) ([]shot.Shot, error) {
	shots, err := s.store.GetShots(ctx, database.ShotFilter{
		RoundID:    q.RoundID,
		CourseID:   q.CourseID,
		DeviceID:   q.DeviceID,
		HoleNumber: q.HoleNumber,
		Clubs:      q.Clubs,
		Since:      q.Since,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	if shots == nil {
		shots = []shot.Shot{}
	}
	return shots, nil
}

func validateCourse(c *shot.Course) error {
	if err := shot.ValidateID("course", c.ID); err != nil {
		return err
	}
	if c.Name == "" {
		return errors.New("course name is required")
	}
	seen := make(map[int]bool, len(c.Holes))
	for _, h := range c.Holes {
		if h.HoleNumber <= 0 {
			return fmt.Errorf("hole number must be positive, got %d", h.HoleNumber)
		}
		if seen[h.HoleNumber] {
			return fmt.Errorf("duplicate hole %d", h.HoleNumber)
		}
		seen[h.HoleNumber] = true
	}
	return nil
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, position.ErrPermissionDenied):
		code = codes.PermissionDenied
	case errors.Is(err, position.ErrTimeout):
		code = codes.DeadlineExceeded
	case errors.Is(err, position.ErrPositionUnavailable):
		code = codes.Unavailable
	case errors.Is(err, database.ErrNotFound), errors.Is(err, queue.ErrJobNotFound):
		code = codes.NotFound
	case errors.Is(err, database.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, database.ErrHoleInUse):
		code = codes.FailedPrecondition
	case errors.Is(err, queue.ErrQueueFull):
		code = codes.ResourceExhausted
	case errors.Is(err, queue.ErrQueueClosed):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		log.Error().Err(err).Msg("Request failed")
		code = codes.Internal
	}

	return status.Error(code, err.Error())
}

// QueueStats reports how many report jobs are held in each status
func (s *Server) QueueStats() map[string]int {
	return s.queue.GetStats()
}

// Shutdown gracefully shuts down the report workers
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.queue.Shutdown(timeout)
}
