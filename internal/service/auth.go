package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/security"
)

const ActionRegisterCustomer = "register_customer"

type authService struct {
	userRepo     repository.UserRepository
	tokenManager security.TokenManager
	audit        AuditRecorder
}

func NewAuthService(userRepo repository.UserRepository, tm security.TokenManager, audit AuditRecorder) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenManager: tm,
		audit:        audit,
	}
}

// RegisterCustomer creates an active customer account. There are no
// passwords; the account is identified by email alone.
func (s *authService) RegisterCustomer(ctx context.Context, name, email, phone, driverLicenseNo string) (*domain.User, string, error) {
	logger.EnterMethod("authService.RegisterCustomer", "email", email)

	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.New(),
		Role:            domain.UserRoleCustomer,
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		Phone:           strings.TrimSpace(phone),
		DriverLicenseNo: strings.TrimSpace(driverLicenseNo),
		Status:          domain.UserStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := user.Validate(); err != nil {
		logger.ExitMethodWithError("authService.RegisterCustomer", err)
		return nil, "", err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		err = domain.Persistence("create user", err)
		logger.ExitMethodWithError("authService.RegisterCustomer", err)
		return nil, "", err
	}

	token, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, user.ID, ActionRegisterCustomer, domain.AuditEntityUser, user.ID, nil)
	logger.ExitMethod("authService.RegisterCustomer", "userID", user.ID)
	return user, token, nil
}

// Login looks the user up by email and issues an access token. Suspended
// users may still log in to view their bookings; creating new ones is refused.
func (s *authService) Login(ctx context.Context, email string) (*domain.User, string, error) {
	logger.EnterMethod("authService.Login", "email", email)

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", domain.Persistence("get user by email", err)
	}
	if user == nil {
		logger.Warn("Login for unknown email", "email", email)
		return nil, "", domain.NotFoundf("user %s", email)
	}

	token, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID)
	return user, token, nil
}
