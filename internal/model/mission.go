package model

import "time"

// Mission is operator-managed reference data; the engines here only read it.
type Mission struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	Cluster   string `json:"cluster"`
	Energy    int    `json:"energy"`
	MaxPerDay int    `json:"max_per_day"`
	Active    bool   `json:"active"`
}

// MissionLog records one successful check-in.
type MissionLog struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"user_id"`
	MissionID int64             `json:"mission_id"`
	TS        time.Time         `json:"ts"`
	Points    int               `json:"points"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MissionStatus is the per-mission daily state reported to clients.
// Status stays "pending" while 0 <= completed_count < max_per_day and
// flips to "done" at the cap.
type MissionStatus struct {
	Mission
	Status         string `json:"status"`
	CompletedCount int    `json:"completed_count"`
}

// TodaySummary aggregates a user's mission day.
type TodaySummary struct {
	MissionsCompleted int `json:"missions_completed"`
	MissionsTotal     int `json:"missions_total"`
	EnergyEarned      int `json:"energy_earned"`
	EnergyAvailable   int `json:"energy_available"`
}
