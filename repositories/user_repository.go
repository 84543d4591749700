package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/openpaddock/motorclub/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
	ErrUserClubInvalid   = errors.New("user club reference invalid")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByClubID(ctx context.Context, clubID int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error

	// Membership helpers take a SQLExecutor so the service layer can run
	// the read-then-write inside one transaction.
	GetClubIDForUpdate(ctx context.Context, q SQLExecutor, userID int) (*int, error)
	SetClubID(ctx context.Context, q SQLExecutor, userID int, clubID *int) error

	SetResetToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	UpdatePasswordAndClearResetToken(ctx context.Context, userID int, passwordHash string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, club_id, created_at, reset_token, reset_token_expires_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, club_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ClubID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return mapUserError(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id DESC`
	return r.listUsers(ctx, query)
}

func (r *postgresUserRepository) ListByClubID(ctx context.Context, clubID int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE club_id = $1 ORDER BY name ASC`
	return r.listUsers(ctx, query, clubID)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			club_id = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ClubID,
		user.ID,
	)
	if err != nil {
		return mapUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// Delete is idempotent: removing an id that no longer exists is not an error.
func (r *postgresUserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *postgresUserRepository) GetClubIDForUpdate(ctx context.Context, q SQLExecutor, userID int) (*int, error) {
	var clubID sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT club_id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !clubID.Valid {
		return nil, nil
	}
	id := int(clubID.Int64)
	return &id, nil
}

func (r *postgresUserRepository) SetClubID(ctx context.Context, q SQLExecutor, userID int, clubID *int) error {
	result, err := q.ExecContext(ctx, `UPDATE users SET club_id = $1 WHERE id = $2`, clubID, userID)
	if err != nil {
		return mapUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetResetToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expires_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, token, expiresAt, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePasswordAndClearResetToken(ctx context.Context, userID int, passwordHash string) error {
	query := `
		UPDATE users SET
			password_hash = $1,
			reset_token = NULL,
			reset_token_expires_at = NULL
		WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ClubID,
		&user.CreatedAt,
		&user.ResetToken,
		&user.ResetTokenExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) listUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		scanErr := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.ClubID,
			&user.CreatedAt,
			&user.ResetToken,
			&user.ResetTokenExpiresAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func mapUserError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "users_club_id_fkey" {
				return ErrUserClubInvalid
			}
		}
	}
	return fmt.Errorf("user query failed: %w", err)
}
