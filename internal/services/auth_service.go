package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker/internal/auth"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/repository"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService handles registration, credential checks and identity tokens.
type AuthService struct {
	store  repository.Store
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	admins map[string]struct{}
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		admins: map[string]struct{}{},
	}
}

// WithAdminEmails marks accounts registered with one of emails as
// administrators.
func (s *AuthService) WithAdminEmails(emails ...string) *AuthService {
	clone := *s
	clone.admins = make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			clone.admins[e] = struct{}{}
		}
	}
	return &clone
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) < constants.MinNameLength {
		return nil, ErrInvalidName
	}
	email := normalizeEmail(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(input.Password) < constants.MinPasswordLength || len(input.Password) > constants.MaxPasswordLength {
		return nil, withDetail(ErrInvalidPassword, "must be %d to %d bytes", constants.MinPasswordLength, constants.MaxPasswordLength)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, storageError("hash password", err)
	}

	_, isAdmin := s.admins[email]
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      isAdmin,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().FindByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageError("check email", err)
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return storageError("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("register", err)
	}

	return user, nil
}

// Authenticate checks the credentials and returns the matching user. It
// does not issue a token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("find user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs an identity token for userID. A non-positive ttl uses
// the configured lifetime.
func (s *AuthService) IssueToken(userID uint64, ttl time.Duration) (string, error) {
	token, err := s.tokens.Issue(userID, ttl)
	if err != nil {
		return "", storageError("issue token", err)
	}
	return token, nil
}

// Login authenticates and issues a token with the default lifetime.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user.ID, 0)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ResolveIdentity reads a token from r through source and returns the
// user it identifies. Header and cookie transports share this path.
func (s *AuthService) ResolveIdentity(ctx context.Context, r *http.Request, source auth.TokenSource) (*models.User, error) {
	raw, err := source(r)
	if err != nil {
		if errors.Is(err, auth.ErrMissingToken) {
			return nil, ErrMissingToken
		}
		return nil, ErrInvalidToken
	}
	return s.Identify(ctx, raw)
}

// Identify verifies a raw token and loads its user.
func (s *AuthService) Identify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageError("find user", err)
	}

	return user, nil
}

// RequireAdmin passes user through if it is an administrator.
func (s *AuthService) RequireAdmin(user *models.User) (*models.User, error) {
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}

	return user, nil
}

// DeleteAccount removes the user together with their tasks.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		affected, err := tx.Users().Delete(ctx, userID)
		if err != nil {
			return storageError("delete user", err)
		}
		if affected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	return classify("delete account", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
