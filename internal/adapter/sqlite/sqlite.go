// Package sqlite implements the domain repositories on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spillthepill/internal/domain"
	"spillthepill/internal/migrations"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB is a user store backed by SQLite.
type DB struct {
	sql       *sql.DB
	writeLock sync.Mutex // sqlite allows one writer at a time
	now       func() time.Time
}

var _ domain.UserRepository = (*DB)(nil)

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, log *slog.Logger) (*DB, error) {
	s, err := Connect(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, s, migrations.SQLite, log); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &DB{sql: s, now: time.Now}, nil
}

// Connect opens the database file without migrating it.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	s, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s.SetConnMaxLifetime(5 * time.Minute)

	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// CreateUser inserts a user under a fresh id.
func (d *DB) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	u := &domain.User{
		ID:             domain.NewUserID(),
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           name,
		CreatedAt:      d.now().UTC().Truncate(time.Millisecond),
		SavedMedicines: []string{},
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email.
func (d *DB) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.findOne(ctx, "SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?", email)
}

// FindByID retrieves a user by ID.
func (d *DB) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.findOne(ctx, "SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?", id)
}

func (d *DB) findOne(ctx context.Context, query, arg string) (*domain.User, error) {
	var (
		u       domain.User
		created int64
	)
	err := d.sql.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()

	rows, err := d.sql.QueryContext(ctx, "SELECT name FROM saved_medicines WHERE user_id = ? ORDER BY id", u.ID)
	if err != nil {
		return nil, fmt.Errorf("query saved medicines: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	u.SavedMedicines = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan saved medicine: %w", err)
		}
		u.SavedMedicines = append(u.SavedMedicines, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved medicines: %w", err)
	}
	return &u, nil
}

// SaveMedicine appends name to the user's list unless already present.
func (d *DB) SaveMedicine(ctx context.Context, userID, name string) error {
	return d.mutateSaved(ctx, userID,
		"INSERT INTO saved_medicines (user_id, name) VALUES (?, ?) ON CONFLICT (user_id, name) DO NOTHING",
		userID, name)
}

// RemoveSavedMedicine drops name from the user's list.
func (d *DB) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	return d.mutateSaved(ctx, userID,
		"DELETE FROM saved_medicines WHERE user_id = ? AND name = ?",
		userID, name)
}

func (d *DB) mutateSaved(ctx context.Context, userID, stmt string, args ...any) error {
	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	var exists bool
	if err := d.sql.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists); err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	if _, err := d.sql.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("update saved medicines: %w", err)
	}
	return nil
}
