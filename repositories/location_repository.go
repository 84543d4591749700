package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openpaddock/motorclub/models"
)

var ErrLocationNotFound = errors.New("location not found")

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id int) error
}

type postgresLocationRepository struct {
	db *sql.DB
}

func NewPostgresLocationRepository(db *sql.DB) LocationRepository {
	return &postgresLocationRepository{db: db}
}

func (r *postgresLocationRepository) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (name, address, city, country, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		location.Name,
		location.Address,
		location.City,
		location.Country,
		location.Capacity,
	).Scan(&location.ID)
}

func (r *postgresLocationRepository) GetByID(ctx context.Context, id int) (*models.Location, error) {
	query := `SELECT id, name, address, city, country, capacity FROM locations WHERE id = $1`

	location := &models.Location{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&location.ID,
		&location.Name,
		&location.Address,
		&location.City,
		&location.Country,
		&location.Capacity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return location, nil
}

func (r *postgresLocationRepository) List(ctx context.Context) ([]models.Location, error) {
	query := `SELECT id, name, address, city, country, capacity FROM locations ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var location models.Location
		scanErr := rows.Scan(
			&location.ID,
			&location.Name,
			&location.Address,
			&location.City,
			&location.Country,
			&location.Capacity,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		locations = append(locations, location)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *postgresLocationRepository) Update(ctx context.Context, location *models.Location) error {
	query := `
		UPDATE locations SET
			name = $1,
			address = $2,
			city = $3,
			country = $4,
			capacity = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		location.Name,
		location.Address,
		location.City,
		location.Country,
		location.Capacity,
		location.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLocationNotFound)
}

func (r *postgresLocationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	return err
}
