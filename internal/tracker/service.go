// Package tracker holds the session rules between the GUI and the backend
// store: one open session per user, close-before-start, and the scheduled
// auto-finalization of forgotten sessions.
package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"activitytracker/internal/db/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

var (
	// ErrNoCategory is returned when a session is started without a category.
	ErrNoCategory = errors.New("no activity category selected")
	// ErrSessionRunning is returned when a session is started while another is open.
	ErrSessionRunning = errors.New("a session is already running")
	// ErrNoOpenSession is returned when there is nothing to finish.
	ErrNoOpenSession = errors.New("no running session to finish")
)

// Repository captures the persistence operations the service needs.
type Repository interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetOpenActivity(ctx context.Context, userID string) (*models.Activity, error)
	FinishActivity(ctx context.Context, id uuid.UUID, end time.Time) (*models.Activity, error)
	FinishAllOpen(ctx context.Context, end time.Time) (int, error)
	ListActivities(ctx context.Context, userID string, from, to time.Time) ([]*models.Activity, error)
}

// Service orchestrates session workflows.
type Service struct {
	repo Repository
	loc  *time.Location
	log  zerolog.Logger

	now func() time.Time
}

// NewService constructs a Service. Timestamps are taken in loc, matching the
// backend table's reporting columns.
func NewService(repo Repository, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
		log:  log,
		now:  time.Now,
	}
}

// Start opens a new session for the user. Exactly one session may be open
// per user: starting while another is running returns ErrSessionRunning.
func (s *Service) Start(ctx context.Context, userID, category, description string, tags []string) (*models.Activity, error) {
	if strings.TrimSpace(category) == "" {
		return nil, ErrNoCategory
	}

	open, err := s.repo.GetOpenActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrSessionRunning
	}

	activity := &models.Activity{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    category,
		Description: description,
		Tags:        pq.StringArray(tags),
		StartTime:   s.now().In(s.loc),
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("component", "tracker").
		Str("user", userID).
		Str("category", category).
		Msg("session started")
	return activity, nil
}

// Finish closes the identified session. Finishing a session that is not open
// returns ErrNoOpenSession; no other record is ever touched.
func (s *Service) Finish(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	finished, err := s.repo.FinishActivity(ctx, id, s.now().In(s.loc))
	if err != nil {
		return nil, err
	}
	if finished == nil {
		return nil, ErrNoOpenSession
	}

	s.log.Info().
		Str("component", "tracker").
		Str("user", finished.UserID).
		Str("category", finished.Category).
		Dur("duration", finished.Duration(s.now())).
		Msg("session finished")
	return finished, nil
}

// Resume returns the user's open session, or nil when none is running. The
// GUI calls this after login to restore the in-progress state.
func (s *Service) Resume(ctx context.Context, userID string) (*models.Activity, error) {
	return s.repo.GetOpenActivity(ctx, userID)
}

// FinishAllOpen closes every running session, used at shutdown.
func (s *Service) FinishAllOpen(ctx context.Context) (int, error) {
	closed, err := s.repo.FinishAllOpen(ctx, s.now().In(s.loc))
	if closed > 0 {
		s.log.Info().
			Str("component", "tracker").
			Int("closed", closed).
			Msg("closed running sessions")
	}
	return closed, err
}

// History lists the user's finished sessions within the range.
func (s *Service) History(ctx context.Context, userID string, from, to time.Time) ([]*models.Activity, error) {
	return s.repo.ListActivities(ctx, userID, from, to)
}

// Location returns the timezone sessions are recorded in.
func (s *Service) Location() *time.Location {
	return s.loc
}
