package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"github.com/openpaddock/motorclub/storage"
)

type ClubService interface {
	CreateClub(ctx context.Context, input ClubInput, image *ImageUpload) (*models.Club, error)
	GetClubByID(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context) ([]models.Club, error)
	UpdateClub(ctx context.Context, id int, input ClubInput, image *ImageUpload, removeImage bool) (*models.Club, error)
	DeleteClub(ctx context.Context, id int) error

	Join(ctx context.Context, clubID, userID int) error
	Leave(ctx context.Context, clubID, userID int) error
	ListMembers(ctx context.Context, clubID int) ([]models.User, error)
}

type ClubInput struct {
	Name        string
	Description string
}

type clubService struct {
	tx       repositories.TxRunner
	clubRepo repositories.ClubRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(
	tx repositories.TxRunner,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ClubService {
	return &clubService{
		tx:       tx,
		clubRepo: clubRepo,
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *clubService) CreateClub(ctx context.Context, input ClubInput, image *ImageUpload) (*models.Club, error) {
	name, err := trimRequired(input.Name, ErrValidationFailed)
	if err != nil {
		return nil, err
	}

	club := &models.Club{
		Name:        name,
		Description: input.Description,
	}

	if image != nil {
		key, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		club.ImageKey = &key
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		s.compensateUpload(ctx, club.ImageKey)
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}

	populateClubImageURL(club, s.uploader)
	return club, nil
}

func (s *clubService) GetClubByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	populateClubImageURL(club, s.uploader)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for i := range clubs {
		populateClubImageURL(&clubs[i], s.uploader)
	}
	return clubs, nil
}

func (s *clubService) UpdateClub(ctx context.Context, id int, input ClubInput, image *ImageUpload, removeImage bool) (*models.Club, error) {
	name, err := trimRequired(input.Name, ErrValidationFailed)
	if err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d for update: %w", id, err)
	}

	club.Name = name
	club.Description = input.Description

	oldKey := club.ImageKey
	var newKey *string
	switch {
	case image != nil:
		key, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newKey = &key
		club.ImageKey = newKey
	case removeImage:
		club.ImageKey = nil
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		s.compensateUpload(ctx, newKey)
		switch {
		case errors.Is(err, repositories.ErrClubNotFound):
			return nil, ErrClubNotFound
		case errors.Is(err, repositories.ErrClubNameConflict):
			return nil, ErrClubNameConflict
		default:
			return nil, fmt.Errorf("failed to update club %d: %w", id, err)
		}
	}

	if oldKey != nil && (newKey != nil || removeImage) {
		s.deleteImageBestEffort(ctx, *oldKey)
	}

	club.ImageURL = nil
	populateClubImageURL(club, s.uploader)
	return club, nil
}

func (s *clubService) DeleteClub(ctx context.Context, id int) error {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil // already gone, delete is idempotent
		}
		return fmt.Errorf("failed to load club %d for delete: %w", id, err)
	}

	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete club %d: %w", id, err)
	}

	if club.ImageKey != nil {
		s.deleteImageBestEffort(ctx, *club.ImageKey)
	}
	return nil
}

// Join moves a user from unassigned to member. The whole check-then-update
// runs in one transaction: the user row is locked, so two concurrent joins
// cannot both observe club_id IS NULL.
func (s *clubService) Join(ctx context.Context, clubID, userID int) error {
	return s.tx.RunInTx(ctx, func(q repositories.SQLExecutor) error {
		exists, err := s.clubRepo.ExistsForShare(ctx, q, clubID)
		if err != nil {
			return fmt.Errorf("failed to check club %d: %w", clubID, err)
		}
		if !exists {
			return ErrClubNotFound
		}

		currentClubID, err := s.userRepo.GetClubIDForUpdate(ctx, q, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user %d: %w", userID, err)
		}
		if currentClubID != nil {
			return ErrAlreadyClubMember
		}

		if err := s.userRepo.SetClubID(ctx, q, userID, &clubID); err != nil {
			return fmt.Errorf("failed to assign user %d to club %d: %w", userID, clubID, err)
		}
		return nil
	})
}

func (s *clubService) Leave(ctx context.Context, clubID, userID int) error {
	return s.tx.RunInTx(ctx, func(q repositories.SQLExecutor) error {
		currentClubID, err := s.userRepo.GetClubIDForUpdate(ctx, q, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user %d: %w", userID, err)
		}
		if currentClubID == nil || *currentClubID != clubID {
			return ErrNotClubMember
		}

		if err := s.userRepo.SetClubID(ctx, q, userID, nil); err != nil {
			return fmt.Errorf("failed to clear club for user %d: %w", userID, err)
		}
		return nil
	})
}

func (s *clubService) ListMembers(ctx context.Context, clubID int) ([]models.User, error) {
	if _, err := s.GetClubByID(ctx, clubID); err != nil {
		return nil, err
	}
	members, err := s.userRepo.ListByClubID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of club %d: %w", clubID, err)
	}
	for i := range members {
		members[i].PasswordHash = ""
	}
	return members, nil
}

func (s *clubService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	ext, err := GetExtensionFromContentType(image.ContentType)
	if err != nil {
		return "", ErrValidationFailed
	}
	key := "clubs/" + uuid.NewString() + ext
	if _, err := s.uploader.Upload(ctx, key, image.ContentType, image.Reader); err != nil {
		s.logger.Error("club image upload failed", slog.Any("error", err))
		return "", ErrImageUploadFailed
	}
	return key, nil
}

// compensateUpload removes an object that was uploaded for a write that then
// failed, so the bucket does not accumulate orphans.
func (s *clubService) compensateUpload(ctx context.Context, key *string) {
	if key != nil {
		s.deleteImageBestEffort(ctx, *key)
	}
}

func (s *clubService) deleteImageBestEffort(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete club image", slog.String("key", key), slog.Any("error", err))
	}
}
