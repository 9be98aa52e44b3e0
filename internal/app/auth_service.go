// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"spillthepill/internal/domain"
)

const minPasswordLength = 6

// Session is a user together with a freshly issued bearer token.
type Session struct {
	User  *domain.User
	Token string
}

// AuthService handles accounts, credentials and saved medicines.
type AuthService struct {
	users  domain.UserRepository
	tokens *TokenManager
	hasher *PasswordHasher
	log    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens *TokenManager, hasher *PasswordHasher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		log:    log,
	}
}

// Signup validates the input, creates the user and issues a token.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return nil, domain.Invalid("Name, email, and password are required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, domain.Invalid("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("Password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.Invalid("Password must be at most %d bytes long", maxPasswordBytes)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, hash, name)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user signed up", "user_id", user.ID)

	return s.issue(user)
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.Invalid("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// LoginWithSSO issues a token for a user already authenticated by the
// identity provider, provisioning the account on first login.
func (s *AuthService) LoginWithSSO(ctx context.Context, email, name string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.Invalid("Identity provider did not return an email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		if strings.TrimSpace(name) == "" {
			name = email
		}
		// SSO accounts have no password hash and cannot use Login.
		user, err = s.users.CreateUser(ctx, email, "", strings.TrimSpace(name))
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			user, err = s.users.FindByEmail(ctx, email)
		}
		if err == nil {
			s.log.InfoContext(ctx, "provisioned sso user", "user_id", user.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Authenticate verifies a bearer token.
func (s *AuthService) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	return s.tokens.Verify(token)
}

// Profile returns the user with the given id.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// SaveMedicine adds a medicine to the user's saved list. Saving twice keeps
// one entry.
func (s *AuthService) SaveMedicine(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Invalid("Medicine name is required")
	}
	return s.users.SaveMedicine(ctx, userID, name)
}

// RemoveSavedMedicine removes a medicine from the user's saved list.
// Removing a medicine that is not saved is a no-op.
func (s *AuthService) RemoveSavedMedicine(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Invalid("Medicine name is required")
	}
	return s.users.RemoveSavedMedicine(ctx, userID, name)
}

// SavedMedicines returns the user's saved medicines in insertion order.
func (s *AuthService) SavedMedicines(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SavedMedicines == nil {
		return []string{}, nil
	}
	return user.SavedMedicines, nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
