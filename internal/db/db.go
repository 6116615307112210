package db

import (
	"context"
	"fmt"
	"time"

	"activitytracker/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	*pgxpool.Pool
}

// New opens a connection pool against the hosted Postgres backend.
func New(ctx context.Context, connString string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}

	// Configure connection pool and statement cache
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	return &DB{pool}, nil
}

const activityColumns = `id, user_id, category, description, tags, start_time, end_time, hours, year, month, day`

// CreateActivity inserts a new open session record.
func (db *DB) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.Year == 0 {
		activity.Year = activity.StartTime.Year()
		activity.Month = int(activity.StartTime.Month())
		activity.Day = activity.StartTime.Day()
	}

	query := `
		INSERT INTO activities (id, user_id, category, description, tags, start_time, year, month, day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Exec(ctx, query,
		activity.ID.String(),
		activity.UserID,
		activity.Category,
		activity.Description,
		activity.Tags,
		activity.StartTime,
		activity.Year,
		activity.Month,
		activity.Day,
	)
	return err
}

// GetActivityByID retrieves a session by its ID.
func (db *DB) GetActivityByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1`

	activity := &models.Activity{}
	err := db.QueryRow(ctx, query, id.String()).Scan(
		&activity.ID,
		&activity.UserID,
		&activity.Category,
		&activity.Description,
		&activity.Tags,
		&activity.StartTime,
		&activity.EndTime,
		&activity.Hours,
		&activity.Year,
		&activity.Month,
		&activity.Day,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// GetOpenActivity gets the running session for a user if one exists.
func (db *DB) GetOpenActivity(ctx context.Context, userID string) (*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1`

	activity := &models.Activity{}
	err := db.QueryRow(ctx, query, userID).Scan(
		&activity.ID,
		&activity.UserID,
		&activity.Category,
		&activity.Description,
		&activity.Tags,
		&activity.StartTime,
		&activity.EndTime,
		&activity.Hours,
		&activity.Year,
		&activity.Month,
		&activity.Day,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// FinishActivity closes an open session, deriving the worked hours. The end
// timestamp never precedes the start timestamp. Returns (nil, nil) when the
// session does not exist or is already closed.
func (db *DB) FinishActivity(ctx context.Context, id uuid.UUID, end time.Time) (*models.Activity, error) {
	query := `
		SELECT start_time
		FROM activities
		WHERE id = $1 AND end_time IS NULL`

	var start time.Time
	err := db.QueryRow(ctx, query, id.String()).Scan(&start)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting session: %w", err)
	}

	if end.Before(start) {
		end = start
	}
	hours := end.Sub(start).Hours()

	query = `
		UPDATE activities
		SET end_time = $1, hours = $2
		WHERE id = $3 AND end_time IS NULL`

	if _, err := db.Exec(ctx, query, end, hours, id.String()); err != nil {
		return nil, err
	}

	return db.GetActivityByID(ctx, id)
}

// FinishAllOpen closes every running session, used when the application
// shuts down. Returns the number of sessions closed; individual failures do
// not abort the batch.
func (db *DB) FinishAllOpen(ctx context.Context, end time.Time) (int, error) {
	rows, err := db.Query(ctx, `SELECT id FROM activities WHERE end_time IS NULL`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	closed := 0
	var lastErr error
	for _, id := range ids {
		if _, err := db.FinishActivity(ctx, id, end); err != nil {
			lastErr = err
			continue
		}
		closed++
	}
	return closed, lastErr
}

// ListActivities retrieves closed sessions that started within the range,
// newest first. An empty userID returns sessions for every user.
func (db *DB) ListActivities(ctx context.Context, userID string, from, to time.Time) ([]*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE start_time >= $1
		AND start_time < $2
		AND end_time IS NOT NULL`
	args := []interface{}{from, to}

	if userID != "" {
		query += ` AND user_id = $3`
		args = append(args, userID)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Category,
			&activity.Description,
			&activity.Tags,
			&activity.StartTime,
			&activity.EndTime,
			&activity.Hours,
			&activity.Year,
			&activity.Month,
			&activity.Day,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
