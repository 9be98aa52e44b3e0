// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"slices"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

// User is an account holder with a list of saved medicine names.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Name           string
	CreatedAt      time.Time
	SavedMedicines []string
}

// Clone returns a deep copy so callers never alias store state.
func (u *User) Clone() *User {
	c := *u
	c.SavedMedicines = slices.Clone(u.SavedMedicines)
	if c.SavedMedicines == nil {
		c.SavedMedicines = []string{}
	}
	return &c
}

// AddSavedMedicine appends name unless it is already saved. It reports
// whether the list changed.
func (u *User) AddSavedMedicine(name string) bool {
	if slices.Contains(u.SavedMedicines, name) {
		return false
	}
	u.SavedMedicines = append(u.SavedMedicines, name)
	return true
}

// RemoveSavedMedicine drops name from the list. It reports whether the list
// changed.
func (u *User) RemoveSavedMedicine(name string) bool {
	i := slices.Index(u.SavedMedicines, name)
	if i < 0 {
		return false
	}
	u.SavedMedicines = slices.Delete(u.SavedMedicines, i, i+1)
	return true
}

// Identity is the authenticated caller decoded from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// UserRepository defines the port for user persistence operations.
// Lookups return ErrUserNotFound on a miss and CreateUser returns
// ErrUserAlreadyExists when the email is taken.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	SaveMedicine(ctx context.Context, userID, name string) error
	RemoveSavedMedicine(ctx context.Context, userID, name string) error
	Close() error
}

const userIDLength = 21

var userIDs = func() func() string {
	gen, err := nanoid.Standard(userIDLength)
	if err != nil {
		panic(err)
	}
	return gen
}()

// NewUserID returns a random URL-safe user identifier.
func NewUserID() string {
	return userIDs()
}
