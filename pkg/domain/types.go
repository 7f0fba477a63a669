package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryEntry is one persisted record of a past successful analysis.
// Entries are append-only and never mutated.
type HistoryEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"`
	Questions       string    `json:"questions"`
	ResumeObjectKey string    `json:"-"`
	CreatedAt       time.Time `json:"timestamp"`
}

type AnalysisResult struct {
	Questions string `json:"questions"`
}
