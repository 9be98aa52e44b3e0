package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spillthepill/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var _ domain.UserRepository = (*DB)(nil)

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
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, created_at) VALUES ($1, $2, $3, $4, $5)",
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email.
func (d *DB) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.findOne(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE email = $1", email)
}

// FindByID retrieves a user by ID.
func (d *DB) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.findOne(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE id = $1", id)
}

func (d *DB) findOne(ctx context.Context, query, arg string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u.SavedMedicines, err = d.savedMedicines(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) savedMedicines(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT name FROM saved_medicines WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("query saved medicines: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan saved medicine: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved medicines: %w", err)
	}
	return names, nil
}

// SaveMedicine appends name to the user's list unless already present.
func (d *DB) SaveMedicine(ctx context.Context, userID, name string) error {
	if err := d.ensureUser(ctx, userID); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO saved_medicines (user_id, name) VALUES ($1, $2) ON CONFLICT (user_id, name) DO NOTHING",
		userID, name,
	)
	if err != nil {
		return fmt.Errorf("insert saved medicine: %w", err)
	}
	return nil
}

// RemoveSavedMedicine drops name from the user's list.
func (d *DB) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	if err := d.ensureUser(ctx, userID); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM saved_medicines WHERE user_id = $1 AND name = $2", userID, name)
	if err != nil {
		return fmt.Errorf("delete saved medicine: %w", err)
	}
	return nil
}

func (d *DB) ensureUser(ctx context.Context, userID string) error {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return nil
}
