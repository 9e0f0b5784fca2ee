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

type newAccount struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=6"`
}

type passwordReset struct {
	Password string `json:"password" validate:"min=6"`
}

// UserService manages accounts on behalf of an administrator. At least one
// admin exists at all times.
type UserService struct {
	users    ports.UserRepository
	hasher   passwordHasher
	validate *validation.Validator
	logger   *slog.Logger
}

func NewUserService(users ports.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		hasher:   passwordHasher{cost: bcrypt.DefaultCost},
		validate: validation.New(),
		logger:   logger,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	if err := s.validate.Struct(newAccount{Username: username, Password: password}); err != nil {
		return nil, err
	}
	hash, err := s.hasher.hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		Preferences:  domain.Preferences{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID, "username", username, "is_admin", isAdmin)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actorID, id int64, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("user not found")
	}

	if patch.IsAdmin != nil && !*patch.IsAdmin && user.IsAdmin {
		if id == actorID {
			return nil, domain.Invariant("cannot remove your own admin rights")
		}
		admins, err := s.users.CountAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, domain.Invariant("cannot remove the last admin")
		}
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, err
	}
	if patch.Password != nil {
		if err := s.validate.Struct(passwordReset{Password: *patch.Password}); err != nil {
			return nil, err
		}
		hash, err := s.hasher.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if id == actorID {
		return domain.Invariant("cannot delete your own account")
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFound("user not found")
	}
	if user.IsAdmin {
		admins, err := s.users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.Invariant("cannot delete the last admin")
		}
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}

// Bootstrap makes sure an admin account matching the configured credentials
// exists, then hands ownerless collections to it.
func (s *UserService) Bootstrap(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return domain.Validation("admin username and password are required")
	}

	admin, err := s.users.FirstAdmin(ctx)
	if err != nil {
		return err
	}
	if admin == nil {
		admin, err = s.seedAdmin(ctx, username, password)
	} else {
		err = s.reconcileAdmin(ctx, admin, username, password)
	}
	if err != nil {
		return err
	}

	adopted, err := s.users.AdoptOrphanCollections(ctx, admin.ID)
	if err != nil {
		return err
	}
	if adopted > 0 {
		s.logger.Info("assigned ownerless collections", "user_id", admin.ID, "count", adopted)
	}
	return nil
}

func (s *UserService) seedAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := s.hasher.hash(password)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.IsAdmin = true
		existing.PasswordHash = hash
		if err := s.users.UpdateUser(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("promoted existing user to admin", "user_id", existing.ID, "username", username)
		return existing, nil
	}

	admin := &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      true,
		Preferences:  domain.Preferences{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("created admin user", "user_id", admin.ID, "username", username)
	return admin, nil
}

func (s *UserService) reconcileAdmin(ctx context.Context, admin *domain.User, username, password string) error {
	changed := false
	if admin.Username != username {
		taken, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken != nil {
			s.logger.Warn("admin username from config belongs to another user, keeping current name",
				"user_id", admin.ID, "current", admin.Username, "configured", username)
		} else {
			admin.Username = username
			changed = true
		}
	}
	if !passwordMatches(admin.PasswordHash, password) {
		hash, err := s.hasher.hash(password)
		if err != nil {
			return err
		}
		admin.PasswordHash = hash
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.users.UpdateUser(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("admin credentials synced from config", "user_id", admin.ID, "username", admin.Username)
	return nil
}

var _ ports.UserService = (*UserService)(nil)
