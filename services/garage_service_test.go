package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/storage"
)

func newGarageFixture() (*fakeVehicleRepo, *fakeVehicleRepo, *fakeUploader, GarageService) {
	carRepo := newFakeVehicleRepo(models.VehicleKindCar)
	motoRepo := newFakeVehicleRepo(models.VehicleKindMotorcycle)
	uploader := &fakeUploader{}
	svc := NewGarageService(carRepo, motoRepo, uploader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return carRepo, motoRepo, uploader, svc
}

func validVehicleInput() VehicleInput {
	return VehicleInput{Name: "Daily", Model: "MX-5", Year: 2019, Description: "weekend toy"}
}

func photoUpload() *ImageUpload {
	return &ImageUpload{Reader: strings.NewReader("jpeg bytes"), ContentType: "image/jpeg"}
}

func TestCreateVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("creates under the right kind", func(t *testing.T) {
		carRepo, motoRepo, _, svc := newGarageFixture()

		car, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, validVehicleInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, 7, car.UserID)

		_, err = carRepo.GetByID(ctx, car.ID)
		assert.NoError(t, err)
		_, err = motoRepo.GetByID(ctx, car.ID)
		assert.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			input VehicleInput
		}{
			{"missing name", VehicleInput{Model: "MX-5", Year: 2019}},
			{"missing model", VehicleInput{Name: "Daily", Year: 2019}},
			{"year too old", VehicleInput{Name: "Daily", Model: "MX-5", Year: 1850}},
			{"year in the far future", VehicleInput{Name: "Daily", Model: "MX-5", Year: 3000}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, _, svc := newGarageFixture()
				_, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, tt.input, nil)
				assert.ErrorIs(t, err, ErrValidationFailed)
			})
		}
	})

	t.Run("photo upload sets the public url", func(t *testing.T) {
		_, _, uploader, svc := newGarageFixture()

		car, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, validVehicleInput(), photoUpload())
		require.NoError(t, err)
		require.NotNil(t, car.PhotoURL)
		assert.True(t, strings.HasPrefix(*car.PhotoURL, "https://cdn.test/cars/"))
		assert.Len(t, uploader.uploaded, 1)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		_, _, uploader, svc := newGarageFixture()

		photo := &ImageUpload{Reader: strings.NewReader("x"), ContentType: "application/pdf"}
		_, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, validVehicleInput(), photo)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, uploader.uploaded)
	})

	t.Run("upload failure fails the request", func(t *testing.T) {
		_, _, uploader, svc := newGarageFixture()
		uploader.UploadFunc = func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
			return nil, errors.New("r2 unavailable")
		}

		_, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, validVehicleInput(), photoUpload())
		assert.ErrorIs(t, err, ErrImageUploadFailed)
	})

	t.Run("insert failure after upload deletes the uploaded object", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		carRepo.CreateFunc = func(ctx context.Context, vehicle *models.Vehicle) error {
			return errors.New("insert failed")
		}

		_, err := svc.CreateVehicle(ctx, models.VehicleKindCar, 7, validVehicleInput(), photoUpload())
		require.Error(t, err)
		require.Len(t, uploader.uploaded, 1)
		assert.Equal(t, uploader.uploaded, uploader.deleted)
	})
}

func TestUpdateVehicle(t *testing.T) {
	ctx := context.Background()
	owner := Actor{UserID: 7, Role: models.RoleUser}
	stranger := Actor{UserID: 8, Role: models.RoleUser}
	admin := Actor{UserID: 9, Role: models.RoleAdmin}

	seed := func(repo *fakeVehicleRepo, photoKey *string) *models.Vehicle {
		return repo.add(&models.Vehicle{
			UserID:   7,
			Name:     "Daily",
			Model:    "MX-5",
			Year:     2019,
			PhotoKey: photoKey,
		})
	}

	t.Run("owner can update", func(t *testing.T) {
		carRepo, _, _, svc := newGarageFixture()
		vehicle := seed(carRepo, nil)

		input := validVehicleInput()
		input.Name = "Track car"
		updated, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner, input, nil, false)
		require.NoError(t, err)
		assert.Equal(t, "Track car", updated.Name)
	})

	t.Run("non-owner is rejected, admin is not", func(t *testing.T) {
		carRepo, _, _, svc := newGarageFixture()
		vehicle := seed(carRepo, nil)

		_, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, stranger, validVehicleInput(), nil, false)
		assert.ErrorIs(t, err, ErrForbiddenOperation)

		_, err = svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, admin, validVehicleInput(), nil, false)
		assert.NoError(t, err)
	})

	t.Run("missing vehicle", func(t *testing.T) {
		_, _, _, svc := newGarageFixture()
		_, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, 42, owner, validVehicleInput(), nil, false)
		assert.ErrorIs(t, err, ErrVehicleNotFound)
	})

	t.Run("new photo replaces and deletes the old object", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		oldKey := "cars/old.jpg"
		vehicle := seed(carRepo, &oldKey)

		updated, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner, validVehicleInput(), photoUpload(), false)
		require.NoError(t, err)
		require.NotNil(t, updated.PhotoURL)
		assert.NotContains(t, *updated.PhotoURL, "old.jpg")
		assert.Contains(t, uploader.deleted, oldKey)
	})

	t.Run("remove flag clears the photo", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		oldKey := "cars/old.jpg"
		vehicle := seed(carRepo, &oldKey)

		updated, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner, validVehicleInput(), nil, true)
		require.NoError(t, err)
		assert.Nil(t, updated.PhotoURL)
		assert.Contains(t, uploader.deleted, oldKey)
	})

	t.Run("no photo and no flag preserves the existing photo", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		oldKey := "cars/old.jpg"
		vehicle := seed(carRepo, &oldKey)

		updated, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner, validVehicleInput(), nil, false)
		require.NoError(t, err)
		require.NotNil(t, updated.PhotoURL)
		assert.Contains(t, *updated.PhotoURL, "old.jpg")
		assert.Empty(t, uploader.deleted)
	})

	t.Run("update failure after upload deletes the new object, keeps the old", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		oldKey := "cars/old.jpg"
		vehicle := seed(carRepo, &oldKey)
		carRepo.UpdateFunc = func(ctx context.Context, v *models.Vehicle) error {
			return errors.New("update failed")
		}

		_, err := svc.UpdateVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner, validVehicleInput(), photoUpload(), false)
		require.Error(t, err)
		require.Len(t, uploader.uploaded, 1)
		assert.Equal(t, uploader.uploaded, uploader.deleted)
		assert.NotContains(t, uploader.deleted, oldKey)
	})
}

func TestDeleteVehicle(t *testing.T) {
	ctx := context.Background()
	owner := Actor{UserID: 7, Role: models.RoleUser}
	stranger := Actor{UserID: 8, Role: models.RoleUser}

	t.Run("owner delete removes the row and the photo", func(t *testing.T) {
		carRepo, _, uploader, svc := newGarageFixture()
		key := "cars/photo.jpg"
		vehicle := carRepo.add(&models.Vehicle{UserID: 7, Name: "Daily", Model: "MX-5", Year: 2019, PhotoKey: &key})

		require.NoError(t, svc.DeleteVehicle(ctx, models.VehicleKindCar, vehicle.ID, owner))
		_, err := carRepo.GetByID(ctx, vehicle.ID)
		assert.Error(t, err)
		assert.Contains(t, uploader.deleted, key)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		carRepo, _, _, svc := newGarageFixture()
		vehicle := carRepo.add(&models.Vehicle{UserID: 7, Name: "Daily", Model: "MX-5", Year: 2019})

		err := svc.DeleteVehicle(ctx, models.VehicleKindCar, vehicle.ID, stranger)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("deleting a missing vehicle succeeds", func(t *testing.T) {
		_, _, _, svc := newGarageFixture()
		assert.NoError(t, svc.DeleteVehicle(ctx, models.VehicleKindCar, 42, owner))
	})
}
