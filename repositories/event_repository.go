package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openpaddock/motorclub/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error

	// CloseExpired appends one closure row per event whose end time has
	// passed and which has no closure yet, returning the rows written.
	// The NOT EXISTS guard makes overlapping runs idempotent.
	CloseExpired(ctx context.Context) ([]models.EventClosure, error)
	ListClosures(ctx context.Context) ([]models.EventClosure, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, starts_at, ends_at, description, location, image_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		event.Title,
		event.StartsAt,
		event.EndsAt,
		event.Description,
		event.Location,
		event.ImageKey,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, title, starts_at, ends_at, description, location, image_key, created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.StartsAt,
		&event.EndsAt,
		&event.Description,
		&event.Location,
		&event.ImageKey,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, title, starts_at, ends_at, description, location, image_key, created_at
		FROM events
		ORDER BY starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		scanErr := rows.Scan(
			&event.ID,
			&event.Title,
			&event.StartsAt,
			&event.EndsAt,
			&event.Description,
			&event.Location,
			&event.ImageKey,
			&event.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			title = $1,
			starts_at = $2,
			ends_at = $3,
			description = $4,
			location = $5,
			image_key = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.StartsAt,
		event.EndsAt,
		event.Description,
		event.Location,
		event.ImageKey,
		event.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

func (r *postgresEventRepository) CloseExpired(ctx context.Context) ([]models.EventClosure, error) {
	query := `
		INSERT INTO event_closures (event_id, event_title, closed_at)
		SELECT e.id, e.title, NOW()
		FROM events e
		WHERE e.ends_at < NOW()
		  AND NOT EXISTS (
			SELECT 1 FROM event_closures c WHERE c.event_id = e.id
		  )
		RETURNING id, event_id, event_title, closed_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]models.EventClosure, 0)
	for rows.Next() {
		var closure models.EventClosure
		if scanErr := rows.Scan(&closure.ID, &closure.EventID, &closure.EventTitle, &closure.ClosedAt); scanErr != nil {
			return nil, scanErr
		}
		closures = append(closures, closure)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return closures, nil
}

func (r *postgresEventRepository) ListClosures(ctx context.Context) ([]models.EventClosure, error) {
	query := `
		SELECT id, event_id, event_title, closed_at
		FROM event_closures
		ORDER BY closed_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]models.EventClosure, 0)
	for rows.Next() {
		var closure models.EventClosure
		if scanErr := rows.Scan(&closure.ID, &closure.EventID, &closure.EventTitle, &closure.ClosedAt); scanErr != nil {
			return nil, scanErr
		}
		closures = append(closures, closure)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return closures, nil
}
