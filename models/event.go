package models

import "time"

type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ImageKey    *string   `json:"-"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventClosure is an append-only audit row written by the scheduler once an
// event's end time has passed. It snapshots the title so the log stays
// meaningful even if the event is later edited or deleted.
type EventClosure struct {
	ID         int       `json:"id"`
	EventID    int       `json:"event_id"`
	EventTitle string    `json:"event_title"`
	ClosedAt   time.Time `json:"closed_at"`
}
