package tracker

import (
	"context"
	"sort"
	"testing"
	"time"

	"activitytracker/internal/db/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubRepo is an in-memory Repository with the same semantics as the
// Postgres store: one row per session, FinishActivity clamps the end
// timestamp and returns (nil, nil) for sessions that are not open.
type stubRepo struct {
	activities map[uuid.UUID]*models.Activity

	failCreate error
}

func newStubRepo() *stubRepo {
	return &stubRepo{activities: map[uuid.UUID]*models.Activity{}}
}

func (r *stubRepo) CreateActivity(_ context.Context, activity *models.Activity) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	clone := *activity
	r.activities[activity.ID] = &clone
	return nil
}

func (r *stubRepo) GetOpenActivity(_ context.Context, userID string) (*models.Activity, error) {
	var open *models.Activity
	for _, a := range r.activities {
		if a.UserID != userID || a.EndTime != nil {
			continue
		}
		if open == nil || a.StartTime.After(open.StartTime) {
			open = a
		}
	}
	if open == nil {
		return nil, nil
	}
	clone := *open
	return &clone, nil
}

func (r *stubRepo) FinishActivity(_ context.Context, id uuid.UUID, end time.Time) (*models.Activity, error) {
	a, ok := r.activities[id]
	if !ok || a.EndTime != nil {
		return nil, nil
	}
	if end.Before(a.StartTime) {
		end = a.StartTime
	}
	hours := end.Sub(a.StartTime).Hours()
	a.EndTime = &end
	a.Hours = &hours
	clone := *a
	return &clone, nil
}

func (r *stubRepo) FinishAllOpen(ctx context.Context, end time.Time) (int, error) {
	closed := 0
	for id, a := range r.activities {
		if a.EndTime != nil {
			continue
		}
		if _, err := r.FinishActivity(ctx, id, end); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (r *stubRepo) ListActivities(_ context.Context, userID string, from, to time.Time) ([]*models.Activity, error) {
	var out []*models.Activity
	for _, a := range r.activities {
		if a.EndTime == nil {
			continue
		}
		if userID != "" && a.UserID != userID {
			continue
		}
		if a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, time.UTC, zerolog.Nop())
}

func TestStartCreatesSingleOpenSession(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	activity, err := svc.Start(ctx, "alice", "Documentação", "writing the manual", nil)
	require.NoError(t, err)
	require.True(t, activity.Open())
	require.Equal(t, "alice", activity.UserID)

	open, err := svc.Resume(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Equal(t, activity.ID, open.ID)
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Start(ctx, "alice", "Reuniões", "", nil)
	require.NoError(t, err)

	_, err = svc.Start(ctx, "alice", "Custos", "", nil)
	require.ErrorIs(t, err, ErrSessionRunning)
}

func TestStartRequiresCategory(t *testing.T) {
	svc := newTestService(newStubRepo())

	_, err := svc.Start(context.Background(), "alice", "  ", "", nil)
	require.ErrorIs(t, err, ErrNoCategory)
}

func TestUsersTrackIndependently(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Start(ctx, "alice", "Cadastro", "", nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, "bob", "RNC", "", nil)
	require.NoError(t, err)

	open, err := svc.Resume(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "RNC", open.Category)
}

func TestFinishClosesExactlyThatSession(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	started, err := svc.Start(ctx, "alice", "Finame", "", nil)
	require.NoError(t, err)

	finished, err := svc.Finish(ctx, started.ID)
	require.NoError(t, err)
	require.Equal(t, started.ID, finished.ID)
	require.NotNil(t, finished.EndTime)
	require.NotNil(t, finished.Hours)
	require.False(t, finished.EndTime.Before(finished.StartTime))

	open, err := svc.Resume(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, open)
}

func TestFinishWithoutOpenSession(t *testing.T) {
	svc := newTestService(newStubRepo())

	_, err := svc.Finish(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNoOpenSession)
}

func TestFinishTwiceFails(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	started, err := svc.Start(ctx, "alice", "Outros", "", nil)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, started.ID)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, started.ID)
	require.ErrorIs(t, err, ErrNoOpenSession)
}

func TestEndNeverPrecedesStart(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Simulate a clock that moved backwards between start and finish.
	future := time.Now().Add(time.Hour)
	svc.now = func() time.Time { return future }
	started, err := svc.Start(ctx, "alice", "Custos", "", nil)
	require.NoError(t, err)

	svc.now = time.Now
	finished, err := svc.Finish(ctx, started.ID)
	require.NoError(t, err)
	require.False(t, finished.EndTime.Before(finished.StartTime))
	require.Equal(t, 0.0, *finished.Hours)
}

func TestFinishAllOpen(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Start(ctx, "alice", "Cadastro", "", nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, "bob", "Reuniões", "", nil)
	require.NoError(t, err)

	closed, err := svc.FinishAllOpen(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, closed)

	for _, user := range []string{"alice", "bob"} {
		open, err := svc.Resume(ctx, user)
		require.NoError(t, err)
		require.Nil(t, open)
	}
}

func TestHistoryListsOnlyFinishedSessions(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Start(ctx, "alice", "Cadastro", "", nil)
	require.NoError(t, err)
	_, err = svc.Finish(ctx, first.ID)
	require.NoError(t, err)

	// Second session stays open and must not show up.
	_, err = svc.Start(ctx, "alice", "Reuniões", "", nil)
	require.NoError(t, err)

	now := time.Now()
	history, err := svc.History(ctx, "alice", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, first.ID, history[0].ID)
	require.False(t, history[0].Open())
}
