package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	GetProfileByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error
	BanUser(ctx context.Context, id int) (*models.User, error)
}

type UpdateProfileInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfileByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d for update: %w", id, err)
	}

	if input.Name != nil {
		name, err := trimRequired(*input.Name, ErrValidationFailed)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if input.Email != nil {
		email, err := trimRequired(*input.Email, ErrValidationFailed)
		if err != nil {
			return nil, err
		}
		user.Email = strings.ToLower(email)
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		default:
			return nil, fmt.Errorf("failed to update user %d: %w", id, err)
		}
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil // already gone, delete is idempotent
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func (s *userService) BanUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d for ban: %w", id, err)
	}

	user.Role = models.RoleBanned
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to ban user %d: %w", id, err)
	}

	user.PasswordHash = ""
	return user, nil
}
