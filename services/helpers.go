package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/storage"
)

// ImageUpload carries one file part of a multipart request into a service.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
}

func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %q", contentType)
	}
}

func trimRequired(value string, missing error) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", missing
	}
	return trimmed, nil
}

// The database stores object keys; public URLs are derived on the way out so
// a bucket move never requires a data migration.

func populateClubImageURL(club *models.Club, uploader storage.FileUploader) {
	if club != nil && club.ImageKey != nil && *club.ImageKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*club.ImageKey); url != "" {
			club.ImageURL = &url
		}
	}
}

func populateVehiclePhotoURL(vehicle *models.Vehicle, uploader storage.FileUploader) {
	if vehicle != nil && vehicle.PhotoKey != nil && *vehicle.PhotoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*vehicle.PhotoKey); url != "" {
			vehicle.PhotoURL = &url
		}
	}
}

func populateEventImageURL(event *models.Event, uploader storage.FileUploader) {
	if event != nil && event.ImageKey != nil && *event.ImageKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*event.ImageKey); url != "" {
			event.ImageURL = &url
		}
	}
}
