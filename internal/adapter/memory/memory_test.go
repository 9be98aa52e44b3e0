package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"spillthepill/internal/domain"
)

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Create
	u, err := db.CreateUser(ctx, "a@b.com", "hash", "A")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Error("expected non-empty ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	// Duplicate email
	if _, err := db.CreateUser(ctx, "a@b.com", "other", "B"); !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	// Lookups
	byEmail, err := db.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	byID, err := db.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byEmail.ID != u.ID || byID.Email != "a@b.com" {
		t.Errorf("lookups disagree: %+v %+v", byEmail, byID)
	}

	// Misses
	if _, err := db.FindByEmail(ctx, "x@y.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := db.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSavedMedicines(t *testing.T) {
	db := New()
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "a@b.com", "hash", "A")

	for _, name := range []string{"Aspirin", "Ibuprofen", "Aspirin"} {
		if err := db.SaveMedicine(ctx, u.ID, name); err != nil {
			t.Fatalf("SaveMedicine: %v", err)
		}
	}
	if err := db.RemoveSavedMedicine(ctx, u.ID, "Paracetamol"); err != nil {
		t.Fatalf("RemoveSavedMedicine of unsaved: %v", err)
	}

	got, _ := db.FindByID(ctx, u.ID)
	if len(got.SavedMedicines) != 2 || got.SavedMedicines[0] != "Aspirin" || got.SavedMedicines[1] != "Ibuprofen" {
		t.Fatalf("unexpected list %v", got.SavedMedicines)
	}

	// Returned users are copies
	got.SavedMedicines[0] = "tampered"
	again, _ := db.FindByID(ctx, u.ID)
	if again.SavedMedicines[0] != "Aspirin" {
		t.Error("store state leaked through returned user")
	}

	if err := db.RemoveSavedMedicine(ctx, u.ID, "Aspirin"); err != nil {
		t.Fatal(err)
	}
	again, _ = db.FindByID(ctx, u.ID)
	if len(again.SavedMedicines) != 1 || again.SavedMedicines[0] != "Ibuprofen" {
		t.Fatalf("unexpected list after remove %v", again.SavedMedicines)
	}

	// Unknown user
	if err := db.SaveMedicine(ctx, "ghost", "Aspirin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := db.RemoveSavedMedicine(ctx, "ghost", "Aspirin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestConcurrentCreate(t *testing.T) {
	db := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every pair of goroutines races on the same email.
			_, err := db.CreateUser(ctx, fmt.Sprintf("u%d@b.com", i/2), "h", "n")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	conflicts := 0
	for err := range errs {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			conflicts++
		} else if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if conflicts != 10 {
		t.Fatalf("expected 10 conflicts, got %d", conflicts)
	}
}
