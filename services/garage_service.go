package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"github.com/openpaddock/motorclub/storage"
)

// GarageService covers both vehicle kinds; cars and motorcycles share every
// rule and differ only in which table their repository points at.
type GarageService interface {
	CreateVehicle(ctx context.Context, kind models.VehicleKind, ownerID int, input VehicleInput, photo *ImageUpload) (*models.Vehicle, error)
	GetVehicleByID(ctx context.Context, kind models.VehicleKind, id int) (*models.Vehicle, error)
	ListVehiclesByUser(ctx context.Context, kind models.VehicleKind, userID int) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, kind models.VehicleKind, id int, actor Actor, input VehicleInput, photo *ImageUpload, removePhoto bool) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, kind models.VehicleKind, id int, actor Actor) error
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

type VehicleInput struct {
	Name        string
	Model       string
	Year        int
	Description string
}

type garageService struct {
	repos    map[models.VehicleKind]repositories.VehicleRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewGarageService(
	carRepo repositories.VehicleRepository,
	motorcycleRepo repositories.VehicleRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) GarageService {
	return &garageService{
		repos: map[models.VehicleKind]repositories.VehicleRepository{
			models.VehicleKindCar:        carRepo,
			models.VehicleKindMotorcycle: motorcycleRepo,
		},
		uploader: uploader,
		logger:   logger,
	}
}

func (s *garageService) repo(kind models.VehicleKind) (repositories.VehicleRepository, error) {
	repo, ok := s.repos[kind]
	if !ok {
		return nil, fmt.Errorf("no repository for vehicle kind %q", kind)
	}
	return repo, nil
}

func (s *garageService) CreateVehicle(ctx context.Context, kind models.VehicleKind, ownerID int, input VehicleInput, photo *ImageUpload) (*models.Vehicle, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := validateVehicleInput(input); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		UserID:      ownerID,
		Name:        input.Name,
		Model:       input.Model,
		Year:        input.Year,
		Description: input.Description,
	}

	if photo != nil {
		key, err := s.uploadPhoto(ctx, kind, photo)
		if err != nil {
			return nil, err
		}
		vehicle.PhotoKey = &key
	}

	if err := repo.Create(ctx, vehicle); err != nil {
		s.compensateUpload(ctx, vehicle.PhotoKey)
		if errors.Is(err, repositories.ErrVehicleOwnerInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	populateVehiclePhotoURL(vehicle, s.uploader)
	return vehicle, nil
}

func (s *garageService) GetVehicleByID(ctx context.Context, kind models.VehicleKind, id int) (*models.Vehicle, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	vehicle, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	populateVehiclePhotoURL(vehicle, s.uploader)
	return vehicle, nil
}

func (s *garageService) ListVehiclesByUser(ctx context.Context, kind models.VehicleKind, userID int) ([]models.Vehicle, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	vehicles, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss for user %d: %w", kind, userID, err)
	}
	for i := range vehicles {
		populateVehiclePhotoURL(&vehicles[i], s.uploader)
	}
	return vehicles, nil
}

func (s *garageService) UpdateVehicle(ctx context.Context, kind models.VehicleKind, id int, actor Actor, input VehicleInput, photo *ImageUpload, removePhoto bool) (*models.Vehicle, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := validateVehicleInput(input); err != nil {
		return nil, err
	}

	vehicle, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to load %s %d for update: %w", kind, id, err)
	}
	if vehicle.UserID != actor.UserID && !actor.isAdmin() {
		return nil, ErrForbiddenOperation
	}

	vehicle.Name = input.Name
	vehicle.Model = input.Model
	vehicle.Year = input.Year
	vehicle.Description = input.Description

	oldKey := vehicle.PhotoKey
	var newKey *string
	switch {
	case photo != nil:
		key, err := s.uploadPhoto(ctx, kind, photo)
		if err != nil {
			return nil, err
		}
		newKey = &key
		vehicle.PhotoKey = newKey
	case removePhoto:
		vehicle.PhotoKey = nil
	}

	if err := repo.Update(ctx, vehicle); err != nil {
		s.compensateUpload(ctx, newKey)
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to update %s %d: %w", kind, id, err)
	}

	if oldKey != nil && (newKey != nil || removePhoto) {
		s.deletePhotoBestEffort(ctx, *oldKey)
	}

	vehicle.PhotoURL = nil
	populateVehiclePhotoURL(vehicle, s.uploader)
	return vehicle, nil
}

func (s *garageService) DeleteVehicle(ctx context.Context, kind models.VehicleKind, id int, actor Actor) error {
	repo, err := s.repo(kind)
	if err != nil {
		return err
	}

	vehicle, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil // already gone, delete is idempotent
		}
		return fmt.Errorf("failed to load %s %d for delete: %w", kind, id, err)
	}
	if vehicle.UserID != actor.UserID && !actor.isAdmin() {
		return ErrForbiddenOperation
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
	}

	if vehicle.PhotoKey != nil {
		s.deletePhotoBestEffort(ctx, *vehicle.PhotoKey)
	}
	return nil
}

func validateVehicleInput(input VehicleInput) error {
	if input.Name == "" || input.Model == "" {
		return ErrValidationFailed
	}
	if input.Year < 1900 || input.Year > time.Now().Year()+1 {
		return ErrValidationFailed
	}
	return nil
}

func (s *garageService) uploadPhoto(ctx context.Context, kind models.VehicleKind, photo *ImageUpload) (string, error) {
	ext, err := GetExtensionFromContentType(photo.ContentType)
	if err != nil {
		return "", ErrValidationFailed
	}
	key := string(kind) + "s/" + uuid.NewString() + ext
	if _, err := s.uploader.Upload(ctx, key, photo.ContentType, photo.Reader); err != nil {
		s.logger.Error("vehicle photo upload failed", slog.String("kind", string(kind)), slog.Any("error", err))
		return "", ErrImageUploadFailed
	}
	return key, nil
}

func (s *garageService) compensateUpload(ctx context.Context, key *string) {
	if key != nil {
		s.deletePhotoBestEffort(ctx, *key)
	}
}

func (s *garageService) deletePhotoBestEffort(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete vehicle photo", slog.String("key", key), slog.Any("error", err))
	}
}
