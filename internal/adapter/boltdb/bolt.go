// Package boltdb implements the user store on a BoltDB key-value file.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spillthepill/internal/domain"

	"github.com/boltdb/bolt"
)

var (
	usersBucket  = []byte("users")
	emailsBucket = []byte("emails")
)

// record is the stored form of a user. Unlike domain.User it keeps the
// password hash in its JSON.
type record struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"passwordHash"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	SavedMedicines []string  `json:"savedMedicines"`
}

func toRecord(u *domain.User) record {
	return record(*u)
}

func (r record) user() *domain.User {
	u := domain.User(r)
	return u.Clone()
}

// DB is a user store backed by a bolt file. Users are kept as JSON under
// their id, with a second bucket indexing ids by email.
type DB struct {
	db  *bolt.DB
	now func() time.Time
}

var _ domain.UserRepository = (*DB)(nil)

// Open opens or creates the bolt file at path.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, emailsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the bolt file.
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateUser inserts a user under a fresh id.
func (d *DB) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	u := &domain.User{
		ID:             domain.NewUserID(),
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           name,
		CreatedAt:      d.now().UTC(),
		SavedMedicines: []string{},
	}

	err := d.db.Update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(emailsBucket)
		if emails.Get([]byte(email)) != nil {
			return domain.ErrUserAlreadyExists
		}
		if err := put(tx, toRecord(u)); err != nil {
			return err
		}
		return emails.Put([]byte(email), []byte(u.ID))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by email.
func (d *DB) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u *domain.User
	err := d.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(emailsBucket).Get([]byte(email))
		if id == nil {
			return domain.ErrUserNotFound
		}
		r, err := get(tx, string(id))
		if err != nil {
			return err
		}
		u = r.user()
		return nil
	})
	return u, err
}

// FindByID retrieves a user by ID.
func (d *DB) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u *domain.User
	err := d.db.View(func(tx *bolt.Tx) error {
		r, err := get(tx, id)
		if err != nil {
			return err
		}
		u = r.user()
		return nil
	})
	return u, err
}

// SaveMedicine appends name to the user's list unless already present.
func (d *DB) SaveMedicine(ctx context.Context, userID, name string) error {
	return d.update(userID, func(u *domain.User) bool { return u.AddSavedMedicine(name) })
}

// RemoveSavedMedicine drops name from the user's list.
func (d *DB) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	return d.update(userID, func(u *domain.User) bool { return u.RemoveSavedMedicine(name) })
}

// update applies fn to the stored user inside one transaction and writes the
// result back if fn reports a change.
func (d *DB) update(userID string, fn func(u *domain.User) bool) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		r, err := get(tx, userID)
		if err != nil {
			return err
		}
		u := r.user()
		if !fn(u) {
			return nil
		}
		return put(tx, toRecord(u))
	})
}

func get(tx *bolt.Tx, id string) (record, error) {
	raw := tx.Bucket(usersBucket).Get([]byte(id))
	if raw == nil {
		return record{}, domain.ErrUserNotFound
	}
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return record{}, fmt.Errorf("decode user %s: %w", id, err)
	}
	return r, nil
}

func put(tx *bolt.Tx, r record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", r.ID, err)
	}
	return tx.Bucket(usersBucket).Put([]byte(r.ID), raw)
}
