// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"spillthepill/internal/domain"
)

// DB implements an in-memory user store. Data lives for the life of the
// process.
type DB struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

var _ domain.UserRepository = (*DB)(nil)

// --- UserRepository ---

// CreateUser inserts a user under a fresh id.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.byEmail[email]; ok {
		return nil, domain.ErrUserAlreadyExists
	}

	u := &domain.User{
		ID:             domain.NewUserID(),
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           name,
		CreatedAt:      db.now().UTC(),
		SavedMedicines: []string{},
	}
	db.users[u.ID] = u
	db.byEmail[email] = u.ID
	return u.Clone(), nil
}

// FindByEmail returns the user registered with email.
func (db *DB) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, ok := db.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return db.users[id].Clone(), nil
}

// FindByID returns the user with the given id.
func (db *DB) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// SaveMedicine appends name to the user's list unless already present.
func (db *DB) SaveMedicine(ctx context.Context, userID, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AddSavedMedicine(name)
	return nil
}

// RemoveSavedMedicine drops name from the user's list.
func (db *DB) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RemoveSavedMedicine(name)
	return nil
}

// Close is a no-op.
func (db *DB) Close() error { return nil }
