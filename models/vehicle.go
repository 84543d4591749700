package models

import "time"

// VehicleKind selects which of the two parallel garage tables a record
// belongs to. Cars and motorcycles share one shape.
type VehicleKind string

const (
	VehicleKindCar        VehicleKind = "car"
	VehicleKindMotorcycle VehicleKind = "motorcycle"
)

func (k VehicleKind) Valid() bool {
	return k == VehicleKindCar || k == VehicleKindMotorcycle
}

type Vehicle struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Kind        VehicleKind `json:"kind"`
	Name        string      `json:"name"`
	Model       string      `json:"model"`
	Year        int         `json:"year"`
	Description string      `json:"description"`
	PhotoKey    *string     `json:"-"`
	PhotoURL    *string     `json:"photo_url"`
	CreatedAt   time.Time   `json:"created_at"`
}
