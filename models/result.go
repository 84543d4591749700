package models

import "time"

// Result rows are written by an external timing pipeline; the application
// only reads them. Rank is computed at query time, never stored.
type Result struct {
	ID         int       `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	EventID    int       `db:"event_id" json:"event_id"`
	Value      float64   `db:"value" json:"value"`
	Unit       string    `db:"unit" json:"unit"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	Comments   string    `db:"comments" json:"comments"`
	Rank       int       `db:"rank" json:"rank"`
}

type LeaderboardEntry struct {
	Username   string  `db:"username" json:"username"`
	BestValue  float64 `db:"best_value" json:"best_value"`
	Unit       string  `db:"unit" json:"unit"`
	EventCount int     `db:"event_count" json:"event_count"`
	Rank       int     `db:"rank" json:"rank"`
}
