package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/openpaddock/motorclub/models"
)

type ResultRepository interface {
	ListByEventID(ctx context.Context, eventID int) ([]models.Result, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// Results are written by the timing pipeline, never by this application, so
// the repository is read-only. sqlx handles the struct scanning for the
// ranked queries.
type postgresResultRepository struct {
	db *sqlx.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: sqlx.NewDb(db, "postgres")}
}

// ListByEventID ranks at query time. All units are lower-is-better (lap
// times, elapsed seconds), so values rank ascending and ties share a rank.
func (r *postgresResultRepository) ListByEventID(ctx context.Context, eventID int) ([]models.Result, error) {
	query := `
		SELECT id, username, event_id, value, unit, recorded_at, comments,
		       RANK() OVER (ORDER BY value ASC) AS rank
		FROM results
		WHERE event_id = $1
		ORDER BY rank ASC, recorded_at ASC`

	results := make([]models.Result, 0)
	if err := r.db.SelectContext(ctx, &results, query, eventID); err != nil {
		return nil, err
	}
	return results, nil
}

// Leaderboard aggregates each user's best (lowest) value across all events
// and ranks users by it, ascending.
func (r *postgresResultRepository) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT username,
		       MIN(value)               AS best_value,
		       MIN(unit)                AS unit,
		       COUNT(DISTINCT event_id) AS event_count,
		       RANK() OVER (ORDER BY MIN(value) ASC) AS rank
		FROM results
		GROUP BY username
		ORDER BY rank ASC, username ASC`

	entries := make([]models.LeaderboardEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}
