package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaddock/motorclub/models"
)

func newEventFixture() (*fakeEventRepo, *fakeUploader, EventService) {
	repo := newFakeEventRepo()
	uploader := &fakeUploader{}
	svc := NewEventService(repo, uploader, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return repo, uploader, svc
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("happy path", func(t *testing.T) {
		_, _, svc := newEventFixture()
		event, err := svc.CreateEvent(ctx, EventInput{
			Title:    "Track Day",
			StartsAt: now.Add(24 * time.Hour),
			EndsAt:   now.Add(30 * time.Hour),
			Location: "Paddock A",
		}, nil)
		require.NoError(t, err)
		assert.NotZero(t, event.ID)
	})

	t.Run("end before start", func(t *testing.T) {
		_, _, svc := newEventFixture()
		_, err := svc.CreateEvent(ctx, EventInput{
			Title:    "Track Day",
			StartsAt: now.Add(30 * time.Hour),
			EndsAt:   now.Add(24 * time.Hour),
			Location: "Paddock A",
		}, nil)
		assert.ErrorIs(t, err, ErrEventInvalidDates)
	})

	t.Run("missing title", func(t *testing.T) {
		_, _, svc := newEventFixture()
		_, err := svc.CreateEvent(ctx, EventInput{
			StartsAt: now.Add(24 * time.Hour),
			EndsAt:   now.Add(30 * time.Hour),
			Location: "Paddock A",
		}, nil)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestCloseExpiredEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo, _, svc := newEventFixture()
	ended := repo.add(&models.Event{
		Title:    "Hillclimb",
		StartsAt: now.Add(-5 * time.Hour),
		EndsAt:   now.Add(-time.Hour),
		Location: "Ridge Road",
	})
	repo.add(&models.Event{
		Title:    "Track Day",
		StartsAt: now.Add(24 * time.Hour),
		EndsAt:   now.Add(30 * time.Hour),
		Location: "Paddock A",
	})

	require.NoError(t, svc.CloseExpiredEvents(ctx))

	closures, err := svc.ListClosures(ctx)
	require.NoError(t, err)
	require.Len(t, closures, 1)
	assert.Equal(t, ended.ID, closures[0].EventID)
	assert.Equal(t, "Hillclimb", closures[0].EventTitle)

	// A second sweep over the same data writes nothing new.
	require.NoError(t, svc.CloseExpiredEvents(ctx))
	closures, err = svc.ListClosures(ctx)
	require.NoError(t, err)
	assert.Len(t, closures, 1)
}
