package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spillthepill/internal/adapter/memory"
	"spillthepill/internal/domain"
	"spillthepill/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	createFn      func(ctx context.Context, email, passwordHash, name string) (*domain.User, error)
	findByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	findByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	saveFn        func(ctx context.Context, userID, name string) error
	removeFn      func(ctx context.Context, userID, name string) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, passwordHash, name)
	}
	return &domain.User{ID: "u1", Email: email, PasswordHash: passwordHash, Name: name}, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) SaveMedicine(ctx context.Context, userID, name string) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, name)
	}
	return nil
}

func (m *mockUserRepo) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, name)
	}
	return nil
}

func (m *mockUserRepo) Close() error { return nil }

func newAuthService(users domain.UserRepository) *AuthService {
	return NewAuthService(users, NewTokenManager("test-secret", time.Hour), NewPasswordHasher(bcrypt.MinCost), logging.Nop())
}

func TestAuthService_SignupLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(memory.New())

	sess, err := svc.Signup(ctx, "a@b.com", "secret1", "A")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if sess.Token == "" || sess.User.ID == "" {
		t.Fatalf("expected token and id, got %+v", sess)
	}
	if sess.User.PasswordHash == "secret1" {
		t.Fatal("password stored in clear")
	}

	login, err := svc.Login(ctx, "A@B.com ", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	id, err := svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != sess.User.ID || id.Email != "a@b.com" {
		t.Errorf("unexpected identity %+v", id)
	}

	u, err := svc.Profile(ctx, id.UserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if u.Name != "A" {
		t.Errorf("expected name A, got %q", u.Name)
	}
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(memory.New())

	if _, err := svc.Signup(ctx, "a@b.com", "secret1", "A"); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	_, err := svc.Signup(ctx, "A@b.com", "secret2", "Other")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := newAuthService(&mockUserRepo{
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			t.Fatal("CreateUser should not be called")
			return nil, nil
		},
	})

	tests := []struct {
		name                  string
		email, password, user string
	}{
		{"missing name", "a@b.com", "secret1", ""},
		{"missing email", "", "secret1", "A"},
		{"missing password", "a@b.com", "", "A"},
		{"bad email", "not-an-email", "secret1", "A"},
		{"display name email", "A <a@b.com>", "secret1", "A"},
		{"short password", "a@b.com", "12345", "A"},
		{"long password", "a@b.com", strings.Repeat("x", 73), "A"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.email, tc.password, tc.user)
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthService_LoginDoesNotRevealEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(memory.New())
	if _, err := svc.Signup(ctx, "a@b.com", "secret1", "A"); err != nil {
		t.Fatal(err)
	}

	_, wrongPass := svc.Login(ctx, "a@b.com", "wrong-pass")
	_, unknown := svc.Login(ctx, "nobody@b.com", "secret1")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v and %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestAuthService_LoginStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := newAuthService(&mockUserRepo{
		findByEmailFn: func(context.Context, string) (*domain.User, error) { return nil, boom },
	})
	_, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_SSOUserCannotUsePasswordLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(memory.New())

	sess, err := svc.LoginWithSSO(ctx, "Sso@Example.com", "")
	if err != nil {
		t.Fatalf("LoginWithSSO: %v", err)
	}
	if sess.User.Name != "sso@example.com" {
		t.Errorf("expected email as name, got %q", sess.User.Name)
	}

	again, err := svc.LoginWithSSO(ctx, "sso@example.com", "Someone")
	if err != nil {
		t.Fatalf("second LoginWithSSO: %v", err)
	}
	if again.User.ID != sess.User.ID {
		t.Error("second SSO login provisioned a new user")
	}

	if _, err := svc.Login(ctx, "sso@example.com", ""); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for empty password, got %v", err)
	}
	if _, err := svc.Login(ctx, "sso@example.com", "anything"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SSOCreateRace(t *testing.T) {
	calls := 0
	svc := newAuthService(&mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			calls++
			if calls == 1 {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "winner", Email: email}, nil
		},
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrUserAlreadyExists
		},
	})

	sess, err := svc.LoginWithSSO(context.Background(), "a@b.com", "A")
	if err != nil {
		t.Fatalf("LoginWithSSO: %v", err)
	}
	if sess.User.ID != "winner" {
		t.Errorf("expected the concurrently created user, got %q", sess.User.ID)
	}
}

func TestAuthService_SavedMedicines(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(memory.New())
	sess, err := svc.Signup(ctx, "a@b.com", "secret1", "A")
	if err != nil {
		t.Fatal(err)
	}
	uid := sess.User.ID

	for _, name := range []string{"Aspirin", " Aspirin ", "Ibuprofen"} {
		if err := svc.SaveMedicine(ctx, uid, name); err != nil {
			t.Fatalf("SaveMedicine(%q): %v", name, err)
		}
	}
	if err := svc.RemoveSavedMedicine(ctx, uid, "Paracetamol"); err != nil {
		t.Fatalf("removing an unsaved medicine should be a no-op, got %v", err)
	}

	got, err := svc.SavedMedicines(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "Aspirin,Ibuprofen" {
		t.Fatalf("unexpected saved list %v", got)
	}

	if err := svc.SaveMedicine(ctx, uid, "  "); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := svc.SaveMedicine(ctx, "ghost", "Aspirin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
