package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openpaddock/motorclub/live"
	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"github.com/openpaddock/motorclub/storage"
)

type EventService interface {
	CreateEvent(ctx context.Context, input EventInput, image *ImageUpload) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id int, input EventInput, image *ImageUpload, removeImage bool) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int) error

	ListClosures(ctx context.Context) ([]models.EventClosure, error)
	// CloseExpiredEvents is called by the scheduler; safe to run at any
	// time and at any frequency.
	CloseExpiredEvents(ctx context.Context) error
}

type EventInput struct {
	Title       string
	StartsAt    time.Time
	EndsAt      time.Time
	Description string
	Location    string
}

type eventService struct {
	eventRepo repositories.EventRepository
	uploader  storage.FileUploader
	hub       *live.Hub
	logger    *slog.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		uploader:  uploader,
		hub:       hub,
		logger:    logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input EventInput, image *ImageUpload) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       input.Title,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Description: input.Description,
		Location:    input.Location,
	}

	if image != nil {
		key, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		event.ImageKey = &key
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.compensateUpload(ctx, event.ImageKey)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	populateEventImageURL(event, s.uploader)
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	populateEventImageURL(event, s.uploader)
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range events {
		populateEventImageURL(&events[i], s.uploader)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int, input EventInput, image *ImageUpload, removeImage bool) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d for update: %w", id, err)
	}

	event.Title = input.Title
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Description = input.Description
	event.Location = input.Location

	oldKey := event.ImageKey
	var newKey *string
	switch {
	case image != nil:
		key, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newKey = &key
		event.ImageKey = newKey
	case removeImage:
		event.ImageKey = nil
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		s.compensateUpload(ctx, newKey)
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}

	if oldKey != nil && (newKey != nil || removeImage) {
		s.deleteImageBestEffort(ctx, *oldKey)
	}

	event.ImageURL = nil
	populateEventImageURL(event, s.uploader)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil // already gone, delete is idempotent
		}
		return fmt.Errorf("failed to load event %d for delete: %w", id, err)
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}

	if event.ImageKey != nil {
		s.deleteImageBestEffort(ctx, *event.ImageKey)
	}
	return nil
}

func (s *eventService) ListClosures(ctx context.Context) ([]models.EventClosure, error) {
	closures, err := s.eventRepo.ListClosures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list event closures: %w", err)
	}
	return closures, nil
}

func (s *eventService) CloseExpiredEvents(ctx context.Context) error {
	closures, err := s.eventRepo.CloseExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to close expired events: %w", err)
	}
	if len(closures) == 0 {
		return nil
	}

	s.logger.Info("closed expired events", slog.Int("count", len(closures)))
	if s.hub != nil {
		for _, closure := range closures {
			s.hub.Broadcast(live.Message{Type: live.MessageEventClosed, Payload: closure})
			// Closure also freezes the event's standings, so listeners
			// watching a results view refresh on the same sweep.
			s.hub.Broadcast(live.Message{Type: live.MessageResultsUpdated, Payload: map[string]int{"event_id": closure.EventID}})
		}
	}
	return nil
}

func validateEventInput(input EventInput) error {
	if input.Title == "" || input.Location == "" {
		return ErrValidationFailed
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return ErrValidationFailed
	}
	if !input.StartsAt.Before(input.EndsAt) {
		return ErrEventInvalidDates
	}
	return nil
}

func (s *eventService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	ext, err := GetExtensionFromContentType(image.ContentType)
	if err != nil {
		return "", ErrValidationFailed
	}
	key := "events/" + uuid.NewString() + ext
	if _, err := s.uploader.Upload(ctx, key, image.ContentType, image.Reader); err != nil {
		s.logger.Error("event image upload failed", slog.Any("error", err))
		return "", ErrImageUploadFailed
	}
	return key, nil
}

func (s *eventService) compensateUpload(ctx context.Context, key *string) {
	if key != nil {
		s.deleteImageBestEffort(ctx, *key)
	}
}

func (s *eventService) deleteImageBestEffort(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete event image", slog.String("key", key), slog.Any("error", err))
	}
}
