package store

import "hireprep/pkg/domain"

// Store defines persistence operations for users and analysis history.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUsername(username string) (bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// history
	AppendHistory(domain.HistoryEntry) error
	ListHistoryByUser(userID string) ([]domain.HistoryEntry, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
