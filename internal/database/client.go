// Package database provides PostgreSQL persistence for courses, rounds and
// shots, and reads device GPS fixes from the OwnTracks locations table.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/stuartshay/shot-tracker/internal/position"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing row,
	// such as two shots claiming the same shot number on a hole
	ErrConflict = errors.New("conflicting write")
	// ErrHoleInUse is returned when saving a course would drop holes that
	// already have shots or scores recorded
	ErrHoleInUse = errors.New("hole has recorded play")
)

// Postgres SQLSTATE codes
const (
	insufficientPrivilege pq.ErrorCode = "42501"
	uniqueViolation       pq.ErrorCode = "23505"
	foreignKeyViolation   pq.ErrorCode = "23503"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Client wraps a PostgreSQL database connection
type Client struct {
	db *sql.DB
}

// NewClient creates a new database client with connection pooling
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close: %w)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// HealthCheck verifies database connectivity
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Migrate creates the course, round and shot tables if they are missing
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// SaveCourse upserts a course and replaces its holes. Holes that already have
// shots or scores in a round may not be dropped; the save fails with
// ErrHoleInUse instead.
func (c *Client) SaveCourse(ctx context.Context, course shot.Course) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("course_id", course.ID).Msg("Failed to roll back course save")
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO courses (id, name, location, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location, updated_at = now()
	`, course.ID, course.Name, course.Location)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}

	inUse, err := holesInUse(ctx, tx, course)
	if err != nil {
		return err
	}
	if len(inUse) > 0 {
		return fmt.Errorf("course %s holes %v: %w", course.ID, inUse, ErrHoleInUse)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM holes WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("clear holes: %w", err)
	}

	for _, h := range course.Holes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO holes (course_id, hole_number, par, tee_lat, tee_lon, green_lat, green_lon, yardage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, course.ID, h.HoleNumber, h.Par,
			h.Tee.Latitude, h.Tee.Longitude,
			h.Green.Latitude, h.Green.Longitude,
			sql.NullInt64{Int64: int64(h.Yardage), Valid: h.Yardage > 0})
		if err != nil {
			return fmt.Errorf("insert hole %d: %w", h.HoleNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	return nil
}

// holesInUse returns the holes missing from course that rounds on it have
// already played
func holesInUse(ctx context.Context, tx *sql.Tx, course shot.Course) ([]int, error) {
	keep := make([]int64, 0, len(course.Holes))
	for _, h := range course.Holes {
		keep = append(keep, int64(h.HoleNumber))
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT s.hole_number
		FROM shots s
		JOIN rounds r ON r.id = s.round_id
		WHERE r.course_id = $1 AND NOT (s.hole_number = ANY($2))
		UNION
		SELECT sc.hole_number
		FROM scores sc
		JOIN rounds r ON r.id = sc.round_id
		WHERE r.course_id = $1 AND sc.score IS NOT NULL AND NOT (sc.hole_number = ANY($2))
		ORDER BY 1
	`, course.ID, pq.Array(keep))
	if err != nil {
		return nil, fmt.Errorf("hole usage query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	var holes []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		holes = append(holes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return holes, nil
}

// GetCourse retrieves a course with its holes ordered by hole number
func (c *Client) GetCourse(ctx context.Context, courseID string) (shot.Course, error) {
	course := shot.Course{ID: courseID}
	err := c.db.QueryRowContext(ctx,
		`SELECT name, location FROM courses WHERE id = $1`, courseID,
	).Scan(&course.Name, &course.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return shot.Course{}, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	if err != nil {
		return shot.Course{}, fmt.Errorf("course query failed: %w", err)
	}

	course.Holes, err = c.GetHoles(ctx, courseID)
	if err != nil {
		return shot.Course{}, err
	}
	return course, nil
}

// ListCourses returns every stored course with its holes, ordered by name
func (c *Client) ListCourses(ctx context.Context) ([]shot.Course, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, location
		FROM courses
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	var courses []shot.Course
	for rows.Next() {
		var course shot.Course
		if err := rows.Scan(&course.ID, &course.Name, &course.Location); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	for i := range courses {
		if courses[i].Holes, err = c.GetHoles(ctx, courses[i].ID); err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// GetHoles retrieves all holes of a course
func (c *Client) GetHoles(ctx context.Context, courseID string) ([]shot.Hole, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT hole_number, par, tee_lat, tee_lon, green_lat, green_lon, yardage
		FROM holes
		WHERE course_id = $1
		ORDER BY hole_number
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	var holes []shot.Hole
	for rows.Next() {
		h, err := scanHole(rows)
		if err != nil {
			return nil, err
		}
		holes = append(holes, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return holes, nil
}

// GetHole retrieves one hole of a course
func (c *Client) GetHole(ctx context.Context, courseID string, holeNumber int) (shot.Hole, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT hole_number, par, tee_lat, tee_lon, green_lat, green_lon, yardage
		FROM holes
		WHERE course_id = $1 AND hole_number = $2
	`, courseID, holeNumber)

	h, err := scanHole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shot.Hole{}, fmt.Errorf("course %s hole %d: %w", courseID, holeNumber, ErrNotFound)
	}
	return h, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHole(s scanner) (shot.Hole, error) {
	var h shot.Hole
	var yardage sql.NullInt64
	err := s.Scan(
		&h.HoleNumber,
		&h.Par,
		&h.Tee.Latitude,
		&h.Tee.Longitude,
		&h.Green.Latitude,
		&h.Green.Longitude,
		&yardage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shot.Hole{}, err
		}
		return shot.Hole{}, fmt.Errorf("scan failed: %w", err)
	}
	if yardage.Valid {
		h.Yardage = int(yardage.Int64)
	}
	return h, nil
}

// SaveRound inserts a round or updates the existing round with the same ID,
// together with its scorecard entries
func (c *Client) SaveRound(ctx context.Context, round shot.Round) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("round_id", round.ID).Msg("Failed to roll back round save")
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rounds (id, course_id, course_name, device_id, played_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET course_id = EXCLUDED.course_id,
			course_name = EXCLUDED.course_name,
			device_id = EXCLUDED.device_id,
			played_at = EXCLUDED.played_at
	`, round.ID, round.CourseID, round.CourseName,
		sql.NullString{String: round.DeviceID, Valid: round.DeviceID != ""},
		round.PlayedAt)
	if err != nil {
		return classifyWriteError(fmt.Sprintf("upsert round %s", round.ID), err)
	}

	for _, e := range round.Scores {
		if err = saveScore(ctx, tx, round.ID, e); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit round: %w", err)
	}
	return nil
}

// SaveScore upserts the scorecard entry for one hole of a round
func (c *Client) SaveScore(ctx context.Context, roundID string, e shot.ScoreEntry) error {
	return saveScore(ctx, c.db, roundID, e)
}

func saveScore(ctx context.Context, ex execer, roundID string, e shot.ScoreEntry) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO scores (round_id, hole_number, par, score, putts, fairway_hit, green_in_regulation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (round_id, hole_number) DO UPDATE
		SET par = EXCLUDED.par,
			score = EXCLUDED.score,
			putts = EXCLUDED.putts,
			fairway_hit = EXCLUDED.fairway_hit,
			green_in_regulation = EXCLUDED.green_in_regulation
	`, roundID, e.HoleNumber, e.Par,
		sql.NullInt64{Int64: int64(e.Score), Valid: e.Score > 0},
		sql.NullInt64{Int64: int64(e.Putts), Valid: e.Putts > 0},
		e.FairwayHit, e.GreenInRegulation)
	if err != nil {
		return classifyWriteError(fmt.Sprintf("save score for round %s hole %d", roundID, e.HoleNumber), err)
	}
	return nil
}

// getScores loads the scorecards of the given rounds keyed by round ID
func (c *Client) getScores(ctx context.Context, roundIDs []string) (map[string][]shot.ScoreEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT round_id, hole_number, par, score, putts, fairway_hit, green_in_regulation
		FROM scores
		WHERE round_id = ANY($1)
		ORDER BY round_id, hole_number
	`, pq.Array(roundIDs))
	if err != nil {
		return nil, fmt.Errorf("scores query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	scores := make(map[string][]shot.ScoreEntry, len(roundIDs))
	for rows.Next() {
		var (
			roundID      string
			e            shot.ScoreEntry
			score, putts sql.NullInt64
		)
		if err := rows.Scan(&roundID, &e.HoleNumber, &e.Par, &score, &putts, &e.FairwayHit, &e.GreenInRegulation); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if score.Valid {
			e.Score = int(score.Int64)
		}
		if putts.Valid {
			e.Putts = int(putts.Int64)
		}
		scores[roundID] = append(scores[roundID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return scores, nil
}

// GetRound retrieves a round by ID
func (c *Client) GetRound(ctx context.Context, roundID string) (shot.Round, error) {
	r := shot.Round{ID: roundID}
	var deviceID sql.NullString
	err := c.db.QueryRowContext(ctx, `
		SELECT course_id, course_name, device_id, played_at
		FROM rounds
		WHERE id = $1
	`, roundID).Scan(&r.CourseID, &r.CourseName, &deviceID, &r.PlayedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return shot.Round{}, fmt.Errorf("round %s: %w", roundID, ErrNotFound)
	}
	if err != nil {
		return shot.Round{}, fmt.Errorf("round query failed: %w", err)
	}
	if deviceID.Valid {
		r.DeviceID = deviceID.String
	}

	scores, err := c.getScores(ctx, []string{roundID})
	if err != nil {
		return shot.Round{}, err
	}
	r.Scores = scores[roundID]

	return r, nil
}

// ListRounds returns rounds with their scorecards newest first, optionally
// for a single device
func (c *Client) ListRounds(ctx context.Context, deviceID string, limit int) ([]shot.Round, error) {
	query := `
		SELECT id, course_id, course_name, device_id, played_at
		FROM rounds
	`
	var args []interface{}
	if deviceID != "" {
		query += " WHERE device_id = $1"
		args = append(args, deviceID)
	}
	query += " ORDER BY played_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	var rounds []shot.Round
	for rows.Next() {
		var r shot.Round
		var device sql.NullString
		if err := rows.Scan(&r.ID, &r.CourseID, &r.CourseName, &device, &r.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if device.Valid {
			r.DeviceID = device.String
		}
		rounds = append(rounds, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if len(rounds) == 0 {
		return rounds, nil
	}

	ids := make([]string, 0, len(rounds))
	for _, r := range rounds {
		ids = append(ids, r.ID)
	}
	scores, err := c.getScores(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rounds {
		rounds[i].Scores = scores[rounds[i].ID]
	}

	return rounds, nil
}

// SaveShot inserts a shot or replaces the shot with the same ID
func (c *Client) SaveShot(ctx context.Context, s shot.Shot) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO shots (id, round_id, hole_number, shot_number, latitude, longitude, club, distance, lie, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			club = EXCLUDED.club,
			distance = EXCLUDED.distance,
			lie = EXCLUDED.lie
	`, s.ID, s.RoundID, s.HoleNumber, s.ShotNumber,
		s.Coordinates.Latitude, s.Coordinates.Longitude,
		s.Club, s.Distance, string(s.Lie), s.Timestamp)
	if err != nil {
		return classifyWriteError(fmt.Sprintf("insert shot %d on round %s hole %d", s.ShotNumber, s.RoundID, s.HoleNumber), err)
	}
	return nil
}

// classifyWriteError maps constraint violations onto ErrConflict and ErrNotFound
func classifyWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ShotFilter selects shots across rounds. Zero-valued fields are not applied.
type ShotFilter struct {
	RoundID    string
	CourseID   string
	DeviceID   string
	HoleNumber int
	Clubs      []string
	Since      time.Time
}

// buildShotQuery renders the shot query and its positional arguments
func buildShotQuery(f ShotFilter) (string, []interface{}) {
	query := `
		SELECT
			s.id, s.round_id, s.hole_number, s.shot_number, s.latitude, s.longitude,
			s.club, s.distance, s.lie, s.created_at
		FROM shots s
		JOIN rounds r ON r.id = s.round_id
		WHERE TRUE
	`

	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}

	if f.RoundID != "" {
		add("s.round_id = $%d", f.RoundID)
	}
	if f.CourseID != "" {
		add("r.course_id = $%d", f.CourseID)
	}
	if f.DeviceID != "" {
		add("r.device_id = $%d", f.DeviceID)
	}
	if f.HoleNumber > 0 {
		add("s.hole_number = $%d", f.HoleNumber)
	}
	if len(f.Clubs) > 0 {
		add("s.club = ANY($%d)", pq.Array(f.Clubs))
	}
	if !f.Since.IsZero() {
		add("s.created_at >= $%d", f.Since)
	}

	query += " ORDER BY r.played_at ASC, s.hole_number ASC, s.shot_number ASC"

	return query, args
}

// GetShots retrieves shots matching the filter in play order
func (c *Client) GetShots(ctx context.Context, f ShotFilter) ([]shot.Shot, error) {
	query, args := buildShotQuery(f)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }() // nolint:errcheck // Close in defer, error not actionable

	var shots []shot.Shot
	for rows.Next() {
		var s shot.Shot
		var lie string

		err := rows.Scan(
			&s.ID,
			&s.RoundID,
			&s.HoleNumber,
			&s.ShotNumber,
			&s.Coordinates.Latitude,
			&s.Coordinates.Longitude,
			&s.Club,
			&s.Distance,
			&lie,
			&s.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		s.Lie = shot.Lie(lie)

		shots = append(shots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return shots, nil
}

// LatestFix returns the most recent GPS fix a device reported to the
// OwnTracks locations table. It implements position.FixSource.
func (c *Client) LatestFix(ctx context.Context, deviceID string) (position.Fix, error) {
	var (
		fix      position.Fix
		accuracy sql.NullInt64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT latitude, longitude, accuracy, created_at
		FROM public.locations
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, deviceID).Scan(&fix.Coordinate.Latitude, &fix.Coordinate.Longitude, &accuracy, &fix.Timestamp)
	if err != nil {
		return position.Fix{}, classifyFixError(deviceID, err)
	}

	if accuracy.Valid {
		fix.AccuracyMeters = float64(accuracy.Int64)
	}

	return fix, nil
}

// classifyFixError maps location query failures onto position failure kinds
func classifyFixError(deviceID string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &position.Error{Kind: position.ErrPositionUnavailable, DeviceID: deviceID, Err: errors.New("no fixes recorded")}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == insufficientPrivilege {
		return &position.Error{Kind: position.ErrPermissionDenied, DeviceID: deviceID, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &position.Error{Kind: position.ErrTimeout, DeviceID: deviceID, Err: err}
	}

	return &position.Error{Kind: position.ErrPositionUnavailable, DeviceID: deviceID, Err: fmt.Errorf("location query failed: %w", err)}
}

// compile-time interface check
var _ position.FixSource = (*Client)(nil)

