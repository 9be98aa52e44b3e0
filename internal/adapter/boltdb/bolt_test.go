package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"spillthepill/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "a@b.com", "hash", "A")
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, "a@b.com", "other", "B")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	byEmail, err := db.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash, "hash must survive the JSON round trip")
	assert.Equal(t, []string{}, byEmail.SavedMedicines)

	_, err = db.FindByEmail(ctx, "x@y.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = db.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSavedMedicines(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, err := db.CreateUser(ctx, "a@b.com", "hash", "A")
	require.NoError(t, err)

	for _, name := range []string{"Aspirin", "Aspirin", "Ibuprofen"} {
		require.NoError(t, db.SaveMedicine(ctx, u.ID, name))
	}
	require.NoError(t, db.RemoveSavedMedicine(ctx, u.ID, "Paracetamol"))
	require.NoError(t, db.RemoveSavedMedicine(ctx, u.ID, "Aspirin"))

	got, err := db.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ibuprofen"}, got.SavedMedicines)

	assert.ErrorIs(t, db.SaveMedicine(ctx, "ghost", "Aspirin"), domain.ErrUserNotFound)
	assert.ErrorIs(t, db.RemoveSavedMedicine(ctx, "ghost", "Aspirin"), domain.ErrUserNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.bolt")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	u, err := db.CreateUser(ctx, "a@b.com", "hash", "A")
	require.NoError(t, err)
	require.NoError(t, db.SaveMedicine(ctx, u.ID, "Aspirin"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	got, err := db.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{"Aspirin"}, got.SavedMedicines)
}
