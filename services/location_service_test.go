package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLocationInput() LocationInput {
	return LocationInput{
		Name:     "Paddock A",
		Address:  "1 Pit Lane",
		City:     "Spa",
		Country:  "Belgium",
		Capacity: 300,
	}
}

func TestCreateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		repo := newFakeLocationRepo()
		svc := NewLocationService(repo)

		location, err := svc.CreateLocation(ctx, validLocationInput())
		require.NoError(t, err)
		assert.NotZero(t, location.ID)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("invalid input writes nothing", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*LocationInput)
		}{
			{"all empty", func(in *LocationInput) { *in = LocationInput{} }},
			{"missing name", func(in *LocationInput) { in.Name = "" }},
			{"whitespace address", func(in *LocationInput) { in.Address = "   " }},
			{"missing city", func(in *LocationInput) { in.City = "" }},
			{"missing country", func(in *LocationInput) { in.Country = "" }},
			{"negative capacity", func(in *LocationInput) { in.Capacity = -1 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newFakeLocationRepo()
				svc := NewLocationService(repo)

				input := validLocationInput()
				tt.mutate(&input)
				_, err := svc.CreateLocation(ctx, input)
				assert.ErrorIs(t, err, ErrValidationFailed)
				assert.Zero(t, repo.count())
			})
		}
	})
}

func TestUpdateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("blank fields leave the row untouched", func(t *testing.T) {
		repo := newFakeLocationRepo()
		svc := NewLocationService(repo)
		created, err := svc.CreateLocation(ctx, validLocationInput())
		require.NoError(t, err)

		_, err = svc.UpdateLocation(ctx, created.ID, LocationInput{})
		assert.ErrorIs(t, err, ErrValidationFailed)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Paddock A", stored.Name)
	})

	t.Run("missing location", func(t *testing.T) {
		svc := NewLocationService(newFakeLocationRepo())
		_, err := svc.UpdateLocation(ctx, 42, validLocationInput())
		assert.ErrorIs(t, err, ErrLocationNotFound)
	})
}
