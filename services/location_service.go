package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
)

type LocationService interface {
	CreateLocation(ctx context.Context, input LocationInput) (*models.Location, error)
	GetLocationByID(ctx context.Context, id int) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	UpdateLocation(ctx context.Context, id int, input LocationInput) (*models.Location, error)
	DeleteLocation(ctx context.Context, id int) error
}

type LocationInput struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	Country  string `json:"country" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

type locationService struct {
	locationRepo repositories.LocationRepository
}

func NewLocationService(locationRepo repositories.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) CreateLocation(ctx context.Context, input LocationInput) (*models.Location, error) {
	location, err := buildLocation(0, input)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

func (s *locationService) GetLocationByID(ctx context.Context, id int) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to get location %d: %w", id, err)
	}
	return location, nil
}

func (s *locationService) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *locationService) UpdateLocation(ctx context.Context, id int, input LocationInput) (*models.Location, error) {
	location, err := buildLocation(id, input)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Update(ctx, location); err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to update location %d: %w", id, err)
	}
	return location, nil
}

// buildLocation normalizes the input into a row, rejecting blank required
// fields and negative capacities before anything touches the database.
func buildLocation(id int, input LocationInput) (*models.Location, error) {
	name, err := trimRequired(input.Name, ErrValidationFailed)
	if err != nil {
		return nil, err
	}
	address, err := trimRequired(input.Address, ErrValidationFailed)
	if err != nil {
		return nil, err
	}
	city, err := trimRequired(input.City, ErrValidationFailed)
	if err != nil {
		return nil, err
	}
	country, err := trimRequired(input.Country, ErrValidationFailed)
	if err != nil {
		return nil, err
	}
	if input.Capacity < 0 {
		return nil, ErrValidationFailed
	}

	return &models.Location{
		ID:       id,
		Name:     name,
		Address:  address,
		City:     city,
		Country:  country,
		Capacity: input.Capacity,
	}, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id int) error {
	if err := s.locationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete location %d: %w", id, err)
	}
	return nil
}
