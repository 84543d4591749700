package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/openpaddock/motorclub/models"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name conflict")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id int) error

	// ExistsForShare locks the club row so a concurrent delete cannot race
	// a membership join running in the same transaction.
	ExistsForShare(ctx context.Context, q SQLExecutor, id int) (bool, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, description, image_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.Description,
		club.ImageKey,
	).Scan(&club.ID, &club.CreatedAt)

	if err != nil {
		return mapClubError(err)
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT id, name, description, image_key, created_at FROM clubs WHERE id = $1`

	club := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.ImageKey,
		&club.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]models.Club, error) {
	query := `SELECT id, name, description, image_key, created_at FROM clubs ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var club models.Club
		if scanErr := rows.Scan(&club.ID, &club.Name, &club.Description, &club.ImageKey, &club.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, club)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs SET
			name = $1,
			description = $2,
			image_key = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		club.Name,
		club.Description,
		club.ImageKey,
		club.ID,
	)
	if err != nil {
		return mapClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	return err
}

func (r *postgresClubRepository) ExistsForShare(ctx context.Context, q SQLExecutor, id int) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM clubs WHERE id = $1 FOR SHARE`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func mapClubError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "clubs_name_key" {
			return ErrClubNameConflict
		}
	}
	return err
}
