package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/validation"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type passwordChange struct {
	Current string `json:"currentPassword" validate:"required"`
	Next    string `json:"newPassword" validate:"min=6"`
}

type preferencesInput struct {
	AccentColor string `json:"accentColor" validate:"omitempty,rgbhex"`
}

type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	hasher   passwordHasher
	validate *validation.Validator
	logger   *slog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   passwordHasher{cost: bcrypt.DefaultCost},
		validate: validation.New(),
		logger:   logger,
	}
}

// Login checks the password and issues a token. Unknown users and wrong
// passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if err := s.validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !passwordMatches(user.PasswordHash, password) {
		s.logger.Info("login failed", "username", username)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginExternal issues a token for an identity already verified elsewhere
// (Google sign-in). The account must exist.
func (s *AuthService) LoginExternal(ctx context.Context, username string) (string, time.Time, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// Verify resolves a token to the current state of its user.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.Identity{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := s.validate.Struct(passwordChange{Current: current, Next: next}); err != nil {
		return err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if !passwordMatches(user.PasswordHash, current) {
		return domain.Validation("current password is incorrect")
	}

	hash, err := s.hasher.hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.UpdateUser(ctx, user)
}

func (s *AuthService) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user.Preferences, nil
}

// UpdatePreferences sets the accent color; an empty value removes it.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID int64, accentColor string) (domain.Preferences, error) {
	if err := s.validate.Struct(preferencesInput{AccentColor: accentColor}); err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	if user.Preferences == nil {
		user.Preferences = domain.Preferences{}
	}
	if accentColor == "" {
		delete(user.Preferences, domain.PrefAccentColor)
	} else {
		user.Preferences[domain.PrefAccentColor] = accentColor
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Preferences, nil
}

var _ ports.AuthService = (*AuthService)(nil)
