package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const ActionSetUserStatus = "set_user_status"

type userService struct {
	userRepo repository.UserRepository
	audit    AuditRecorder
}

func NewUserService(userRepo repository.UserRepository, audit AuditRecorder) UserService {
	return &userService{userRepo: userRepo, audit: audit}
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("get user", err)
	}
	if user == nil {
		return nil, domain.NotFoundf("user %s", userID)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list users", err)
	}
	return users, nil
}

// SetUserStatus suspends or reactivates an account. Admins cannot suspend
// themselves.
func (s *userService) SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	if _, err := domain.ParseUserStatus(status.String()); err != nil {
		return nil, err
	}
	if actorID == userID && status == domain.UserStatusSuspended {
		return nil, domain.Validationf("cannot suspend your own account")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := user.Status
	if from == status {
		return user, nil
	}

	user.Status = status
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, domain.Persistence("update user", err)
	}

	logger.Info("User status changed", "userID", user.ID, "from", from, "to", status)
	s.audit.Record(ctx, actorID, ActionSetUserStatus, domain.AuditEntityUser, user.ID, map[string]any{
		"from": from.String(),
		"to":   status.String(),
	})
	return user, nil
}

// EnsureAdmin returns the admin with the given email, creating it if absent.
func (s *userService) EnsureAdmin(ctx context.Context, name, email string) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, domain.Persistence("get user by email", err)
	}
	if existing != nil {
		if !existing.IsAdmin() {
			return nil, domain.Conflictf("%s is registered as a %s", email, existing.Role)
		}
		return existing, nil
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:        uuid.New(),
		Role:      domain.UserRoleAdmin,
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Status:    domain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, domain.Persistence("create admin", err)
	}
	logger.Info("Admin account created", "userID", admin.ID, "email", admin.Email)
	return admin, nil
}
