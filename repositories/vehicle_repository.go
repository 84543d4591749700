package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openpaddock/motorclub/models"
)

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleOwnerInvalid = errors.New("vehicle owner reference invalid")
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id int) (*models.Vehicle, error)
	ListByUserID(ctx context.Context, userID int) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id int) error
	Kind() models.VehicleKind
}

// Cars and motorcycles live in parallel tables with the same shape, so one
// repository implementation serves both, parameterized by table name.
type postgresVehicleRepository struct {
	db    *sql.DB
	kind  models.VehicleKind
	table string
}

func NewPostgresVehicleRepository(db *sql.DB, kind models.VehicleKind) (VehicleRepository, error) {
	var table string
	switch kind {
	case models.VehicleKindCar:
		table = "cars"
	case models.VehicleKindMotorcycle:
		table = "motorcycles"
	default:
		return nil, fmt.Errorf("unknown vehicle kind %q", kind)
	}
	return &postgresVehicleRepository{db: db, kind: kind, table: table}, nil
}

func (r *postgresVehicleRepository) Kind() models.VehicleKind {
	return r.kind
}

func (r *postgresVehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO ` + r.table + ` (user_id, name, model, year, description, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.UserID,
		vehicle.Name,
		vehicle.Model,
		vehicle.Year,
		vehicle.Description,
		vehicle.PhotoKey,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)

	if err != nil {
		return r.mapError(err)
	}
	vehicle.Kind = r.kind
	return nil
}

func (r *postgresVehicleRepository) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	query := `
		SELECT id, user_id, name, model, year, description, photo_key, created_at
		FROM ` + r.table + `
		WHERE id = $1`

	vehicle := &models.Vehicle{Kind: r.kind}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.UserID,
		&vehicle.Name,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Description,
		&vehicle.PhotoKey,
		&vehicle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (r *postgresVehicleRepository) ListByUserID(ctx context.Context, userID int) ([]models.Vehicle, error) {
	query := `
		SELECT id, user_id, name, model, year, description, photo_key, created_at
		FROM ` + r.table + `
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]models.Vehicle, 0)
	for rows.Next() {
		vehicle := models.Vehicle{Kind: r.kind}
		scanErr := rows.Scan(
			&vehicle.ID,
			&vehicle.UserID,
			&vehicle.Name,
			&vehicle.Model,
			&vehicle.Year,
			&vehicle.Description,
			&vehicle.PhotoKey,
			&vehicle.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		vehicles = append(vehicles, vehicle)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *postgresVehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE ` + r.table + ` SET
			name = $1,
			model = $2,
			year = $3,
			description = $4,
			photo_key = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		vehicle.Name,
		vehicle.Model,
		vehicle.Year,
		vehicle.Description,
		vehicle.PhotoKey,
		vehicle.ID,
	)
	if err != nil {
		return r.mapError(err)
	}
	return checkAffectedRows(result, ErrVehicleNotFound)
}

func (r *postgresVehicleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	return err
}

func (r *postgresVehicleRepository) mapError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == r.table+"_user_id_fkey" {
			return ErrVehicleOwnerInvalid
		}
	}
	return err
}
