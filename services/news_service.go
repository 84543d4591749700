package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
)

type NewsService interface {
	CreatePost(ctx context.Context, input NewsInput) (*models.NewsPost, error)
	GetPostByID(ctx context.Context, id int) (*models.NewsPost, error)
	ListPosts(ctx context.Context) ([]models.NewsPost, error)
	UpdatePost(ctx context.Context, id int, input NewsInput) (*models.NewsPost, error)
	DeletePost(ctx context.Context, id int) error
}

type NewsInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type newsService struct {
	newsRepo repositories.NewsRepository
}

func NewNewsService(newsRepo repositories.NewsRepository) NewsService {
	return &newsService{newsRepo: newsRepo}
}

func (s *newsService) CreatePost(ctx context.Context, input NewsInput) (*models.NewsPost, error) {
	title, content, err := validateNewsInput(input)
	if err != nil {
		return nil, err
	}

	post := &models.NewsPost{
		Title:   title,
		Content: content,
	}
	if err := s.newsRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create news post: %w", err)
	}
	return post, nil
}

func (s *newsService) GetPostByID(ctx context.Context, id int) (*models.NewsPost, error) {
	post, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsPostNotFound) {
			return nil, ErrNewsPostNotFound
		}
		return nil, fmt.Errorf("failed to get news post %d: %w", id, err)
	}
	return post, nil
}

func (s *newsService) ListPosts(ctx context.Context) ([]models.NewsPost, error) {
	posts, err := s.newsRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list news posts: %w", err)
	}
	return posts, nil
}

func (s *newsService) UpdatePost(ctx context.Context, id int, input NewsInput) (*models.NewsPost, error) {
	title, content, err := validateNewsInput(input)
	if err != nil {
		return nil, err
	}

	post, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsPostNotFound) {
			return nil, ErrNewsPostNotFound
		}
		return nil, fmt.Errorf("failed to load news post %d for update: %w", id, err)
	}

	post.Title = title
	post.Content = content
	if err := s.newsRepo.Update(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNewsPostNotFound) {
			return nil, ErrNewsPostNotFound
		}
		return nil, fmt.Errorf("failed to update news post %d: %w", id, err)
	}
	return post, nil
}

func validateNewsInput(input NewsInput) (title, content string, err error) {
	title, err = trimRequired(input.Title, ErrValidationFailed)
	if err != nil {
		return "", "", err
	}
	content, err = trimRequired(input.Content, ErrValidationFailed)
	if err != nil {
		return "", "", err
	}
	return title, content, nil
}

func (s *newsService) DeletePost(ctx context.Context, id int) error {
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete news post %d: %w", id, err)
	}
	return nil
}
