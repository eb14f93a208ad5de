package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/agroflow/agroflow-backend/internal/identity/events"
	"github.com/agroflow/agroflow-backend/internal/identity/repository"
	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/permissions"
)

// IdentityService handles accounts, bootstrap and authentication
type IdentityService struct {
	userRepo  *repository.UserRepository
	publisher *events.IdentityEventPublisher
	jwtCfg    config.JWTConfig
	logger    *logger.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	userRepo *repository.UserRepository,
	publisher *events.IdentityEventPublisher,
	jwtCfg config.JWTConfig,
	log *logger.Logger,
) *IdentityService {
	return &IdentityService{
		userRepo:  userRepo,
		publisher: publisher,
		jwtCfg:    jwtCfg,
		logger:    log,
	}
}

func validateCredentials(email, password string) error {
	details := make(map[string]string)
	if email == "" || !strings.Contains(email, "@") {
		details["email"] = "must be a valid email address"
	}
	if len(password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// BootstrapAdmin creates the initial superuser account. It succeeds exactly
// once; any later attempt fails with a conflict regardless of credentials.
func (s *IdentityService) BootstrapAdmin(ctx context.Context, email, password string) (*repository.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	count, err := s.userRepo.CountSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.Conflict("administrator account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
		IsStaff:      true,
		IsSuperuser:  true,
		Permissions:  repository.PermissionsList{"*"},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("administrator account bootstrapped")
	s.publisher.PublishUserCreated(ctx, user)
	return user, nil
}

// CreateUser creates a staff account with the given permission set
func (s *IdentityService) CreateUser(ctx context.Context, email, password, role string, perms []string) (*repository.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	for _, perm := range perms {
		if !permissions.IsValidPermission(perm) {
			return nil, errors.Validation(map[string]string{
				"permissions": "unknown permission " + perm,
			})
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = "staff"
	}

	user := &repository.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsStaff:      true,
		Permissions:  repository.PermissionsList(perms),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publisher.PublishUserCreated(ctx, user)
	return user, nil
}

// GetUser gets a user by ID
func (s *IdentityService) GetUser(ctx context.Context, id string) (*repository.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers lists all users
func (s *IdentityService) ListUsers(ctx context.Context) ([]*repository.User, error) {
	return s.userRepo.List(ctx)
}

// UpdatePermissions replaces a user's permission set
func (s *IdentityService) UpdatePermissions(ctx context.Context, id string, perms []string) error {
	for _, perm := range perms {
		if !permissions.IsValidPermission(perm) {
			return errors.Validation(map[string]string{
				"permissions": "unknown permission " + perm,
			})
		}
	}
	return s.userRepo.UpdatePermissions(ctx, id, repository.PermissionsList(perms))
}

// Login verifies credentials and issues a signed access token
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *repository.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", nil, errors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.Unauthorized("invalid credentials")
	}

	now := time.Now()
	claims := httputil.Claims{
		UserID:      user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
		IsSuperuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", nil, err
	}

	return signed, user, nil
}
