package ports

import "github.com/randomtoy/faas-go/internal/domain"

// ProfileStore persists the single user profile blob. A malformed or absent
// blob loads as ok=false, never as an error.
type ProfileStore interface {
	LoadProfile() (profile domain.UserProfile, ok bool, err error)
	SaveProfile(profile domain.UserProfile) error
}

// HistoryStore persists the history collection as a whole: the full list is
// rewritten on every mutation.
type HistoryStore interface {
	LoadHistory() ([]domain.HistoryRecord, error)
	SaveHistory(records []domain.HistoryRecord) error
}
