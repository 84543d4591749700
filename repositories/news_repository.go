package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openpaddock/motorclub/models"
)

var ErrNewsPostNotFound = errors.New("news post not found")

type NewsRepository interface {
	Create(ctx context.Context, post *models.NewsPost) error
	GetByID(ctx context.Context, id int) (*models.NewsPost, error)
	List(ctx context.Context) ([]models.NewsPost, error)
	Update(ctx context.Context, post *models.NewsPost) error
	Delete(ctx context.Context, id int) error
}

type postgresNewsRepository struct {
	db *sql.DB
}

func NewPostgresNewsRepository(db *sql.DB) NewsRepository {
	return &postgresNewsRepository{db: db}
}

func (r *postgresNewsRepository) Create(ctx context.Context, post *models.NewsPost) error {
	query := `
		INSERT INTO news_posts (title, content, date)
		VALUES ($1, $2, NOW())
		RETURNING id, date`

	return r.db.QueryRowContext(ctx, query, post.Title, post.Content).Scan(&post.ID, &post.Date)
}

func (r *postgresNewsRepository) GetByID(ctx context.Context, id int) (*models.NewsPost, error) {
	query := `SELECT id, title, content, date FROM news_posts WHERE id = $1`

	post := &models.NewsPost{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&post.ID, &post.Title, &post.Content, &post.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNewsPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (r *postgresNewsRepository) List(ctx context.Context) ([]models.NewsPost, error) {
	query := `SELECT id, title, content, date FROM news_posts ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.NewsPost, 0)
	for rows.Next() {
		var post models.NewsPost
		if scanErr := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Date); scanErr != nil {
			return nil, scanErr
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postgresNewsRepository) Update(ctx context.Context, post *models.NewsPost) error {
	query := `UPDATE news_posts SET title = $1, content = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, post.Title, post.Content, post.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNewsPostNotFound)
}

func (r *postgresNewsRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM news_posts WHERE id = $1`, id)
	return err
}
