package grpc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/stuartshay/shot-tracker/internal/database"
	"github.com/stuartshay/shot-tracker/internal/shot"
)

// memStore is an in-memory Store for handler tests
type memStore struct {
	mu      sync.Mutex
	courses map[string]shot.Course
	rounds  map[string]shot.Round
	shots   []shot.Shot
	failErr error

	// beforeSave runs ahead of each SaveShot without the lock held
	beforeSave func(s shot.Shot)
}

func newMemStore() *memStore {
	return &memStore{
		courses: make(map[string]shot.Course),
		rounds:  make(map[string]shot.Round),
	}
}

func (m *memStore) SaveCourse(_ context.Context, course shot.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.courses[course.ID] = course
	return nil
}

func (m *memStore) GetCourse(_ context.Context, courseID string) (shot.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return shot.Course{}, fmt.Errorf("course %s: %w", courseID, database.ErrNotFound)
	}
	return c, nil
}

func (m *memStore) ListCourses(_ context.Context) ([]shot.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []shot.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetHole(ctx context.Context, courseID string, holeNumber int) (shot.Hole, error) {
	c, err := m.GetCourse(ctx, courseID)
	if err != nil {
		return shot.Hole{}, err
	}
	h, ok := c.Hole(holeNumber)
	if !ok {
		return shot.Hole{}, fmt.Errorf("course %s hole %d: %w", courseID, holeNumber, database.ErrNotFound)
	}
	return h, nil
}

func (m *memStore) GetHoles(ctx context.Context, courseID string) ([]shot.Hole, error) {
	c, err := m.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return c.Holes, nil
}

func (m *memStore) SaveRound(_ context.Context, round shot.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	round.Scores = slices.Clone(round.Scores)
	m.rounds[round.ID] = round
	return nil
}

func (m *memStore) ListRounds(_ context.Context, deviceID string, limit int) ([]shot.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []shot.Round
	for _, r := range m.rounds {
		if deviceID == "" || r.DeviceID == deviceID {
			r.Scores = slices.Clone(r.Scores)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayedAt.After(out[j].PlayedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SaveScore(_ context.Context, roundID string, entry shot.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	r, ok := m.rounds[roundID]
	if !ok {
		return fmt.Errorf("round %s: %w", roundID, database.ErrNotFound)
	}
	r.Scores = slices.Clone(r.Scores)
	r.SetScore(entry)
	m.rounds[roundID] = r
	return nil
}

func (m *memStore) GetRound(_ context.Context, roundID string) (shot.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return shot.Round{}, fmt.Errorf("round %s: %w", roundID, database.ErrNotFound)
	}
	r.Scores = slices.Clone(r.Scores)
	return r, nil
}

func (m *memStore) SaveShot(_ context.Context, s shot.Shot) error {
	if m.beforeSave != nil {
		m.beforeSave(s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.shots {
		if existing.RoundID == s.RoundID && existing.HoleNumber == s.HoleNumber && existing.ShotNumber == s.ShotNumber {
			return fmt.Errorf("save shot: %w", database.ErrConflict)
		}
	}
	m.shots = append(m.shots, s)
	return nil
}

// insertShot stores a shot directly, as a concurrent writer would
func (m *memStore) insertShot(s shot.Shot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shots = append(m.shots, s)
}

func (m *memStore) GetShots(_ context.Context, f database.ShotFilter) ([]shot.Shot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}

	var out []shot.Shot
	for _, s := range m.shots {
		round := m.rounds[s.RoundID]
		switch {
		case f.RoundID != "" && s.RoundID != f.RoundID:
		case f.CourseID != "" && round.CourseID != f.CourseID:
		case f.DeviceID != "" && round.DeviceID != f.DeviceID:
		case f.HoleNumber > 0 && s.HoleNumber != f.HoleNumber:
		case len(f.Clubs) > 0 && !slices.Contains(f.Clubs, s.Club):
		case !f.Since.IsZero() && s.Timestamp.Before(f.Since):
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("connection refused")

var _ Store = (*memStore)(nil)
