package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	"golang.org/x/sync/singleflight"
)

type ResultService interface {
	EventResults(ctx context.Context, eventID int) ([]models.Result, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// Ranked queries are the most expensive reads in the application and the
// frontend polls them, so identical in-flight queries are collapsed into one
// database round trip.
type resultService struct {
	resultRepo repositories.ResultRepository
	eventRepo  repositories.EventRepository
	group      singleflight.Group
}

func NewResultService(resultRepo repositories.ResultRepository, eventRepo repositories.EventRepository) ResultService {
	return &resultService{
		resultRepo: resultRepo,
		eventRepo:  eventRepo,
	}
}

func (s *resultService) EventResults(ctx context.Context, eventID int) ([]models.Result, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to check event %d: %w", eventID, err)
	}

	v, err, _ := s.group.Do("event:"+strconv.Itoa(eventID), func() (interface{}, error) {
		return s.resultRepo.ListByEventID(ctx, eventID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load results for event %d: %w", eventID, err)
	}
	return v.([]models.Result), nil
}

func (s *resultService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	v, err, _ := s.group.Do("leaderboard", func() (interface{}, error) {
		return s.resultRepo.Leaderboard(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return v.([]models.LeaderboardEntry), nil
}
