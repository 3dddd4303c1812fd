package accesscontrol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/apperrors"
	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/db"
)

// Messages returned to clients
const (
	MsgAdminOnly        = "Access denied. Admin only."
	MsgUserExists       = "User already exists."
	MsgInvalidRole      = `Invalid role. Must be "admin" or "volunteer".`
	MsgInvalidRoleShort = "Invalid role."
	MsgSelfDelete       = "Cannot delete your own account."
	MsgUserNotFound     = "User not found."
	MsgInvalidToken     = "Invalid token"
	MsgNotRegistered    = "Access denied. User not registered."
	MsgAuthRequired     = "Authentication required"
	MsgEmailRequired    = "Email is required."
)

// IdentityVerifier resolves an identity proof (an ID token) to a verified email
type IdentityVerifier interface {
	VerifyEmail(ctx context.Context, proof string) (string, error)
}

// Service is the user directory with role checks
type Service struct {
	users    db.UserStore
	verifier IdentityVerifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an access control service. verifier may be nil, in which case token
// based operations fail as unauthenticated.
func NewService(users db.UserStore, verifier IdentityVerifier, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Lookup returns the directory entry for email, or nil when absent
func (s *Service) Lookup(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to look up user: %w", err))
	}
	return user, nil
}

// List returns the public view of every user. Admin only.
func (s *Service) List(ctx context.Context, requester string) ([]model.Profile, error) {
	if err := s.requireAdmin(ctx, requester); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list users: %w", err))
	}

	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

// Create adds a user. Checks run in order: requester is admin, email is new, role is valid.
func (s *Service) Create(ctx context.Context, requester, email, name string, role model.Role, volunteerSheetName string) error {
	if err := s.requireAdmin(ctx, requester); err != nil {
		return err
	}

	existing, err := s.Lookup(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.New(apperrors.ErrConflict, MsgUserExists)
	}

	if !role.IsValid() {
		return apperrors.New(apperrors.ErrInvalidArgument, MsgInvalidRole)
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, MsgEmailRequired)
	}

	user := model.User{
		Email:              email,
		Name:               strings.TrimSpace(name),
		Role:               role,
		VolunteerSheetName: strings.TrimSpace(volunteerSheetName),
		CreatedDate:        s.timestamp(),
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to add user: %w", err))
	}

	s.logger.Info("User added",
		zap.String("by", requester),
		zap.String("email", email),
		zap.String("role", string(role)))
	return nil
}

// Delete removes a user. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, requester, target string) error {
	if err := s.requireAdmin(ctx, requester); err != nil {
		return err
	}

	if model.SameEmail(requester, target) {
		return apperrors.New(apperrors.ErrInvalidArgument, MsgSelfDelete)
	}

	if err := s.users.DeleteUser(ctx, strings.TrimSpace(target)); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.New(apperrors.ErrNotFound, MsgUserNotFound)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete user: %w", err))
	}

	s.logger.Info("User deleted", zap.String("by", requester), zap.String("email", target))
	return nil
}

// UpdateRole overwrites a user's role in place
func (s *Service) UpdateRole(ctx context.Context, requester, target string, role model.Role) error {
	if err := s.requireAdmin(ctx, requester); err != nil {
		return err
	}

	if !role.IsValid() {
		return apperrors.New(apperrors.ErrInvalidArgument, MsgInvalidRoleShort)
	}

	if err := s.users.UpdateUserRole(ctx, strings.TrimSpace(target), role); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.New(apperrors.ErrNotFound, MsgUserNotFound)
		}
		return apperrors.Internal(fmt.Errorf("failed to update user role: %w", err))
	}

	s.logger.Info("User role updated",
		zap.String("by", requester),
		zap.String("email", target),
		zap.String("role", string(role)))
	return nil
}

// Authenticate verifies an ID token, then signs in the user it names
func (s *Service) Authenticate(ctx context.Context, idToken string) (*model.Profile, error) {
	email, err := s.verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, email)
}

// AuthenticateByEmail signs in a user without a token
func (s *Service) AuthenticateByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return s.signIn(ctx, email)
}

// Requester resolves who is making an admin request. A valid token wins; otherwise fallbackEmail
// is used when non-empty. Pass an empty fallback to require a token.
func (s *Service) Requester(ctx context.Context, token, fallbackEmail string) (string, error) {
	if strings.TrimSpace(token) != "" {
		if email, err := s.verify(ctx, token); err == nil {
			return email, nil
		}
	}
	if email := strings.TrimSpace(fallbackEmail); email != "" {
		return email, nil
	}
	return "", apperrors.New(apperrors.ErrUnauthenticated, MsgAuthRequired)
}

func (s *Service) verify(ctx context.Context, idToken string) (string, error) {
	if s.verifier == nil || strings.TrimSpace(idToken) == "" {
		return "", apperrors.New(apperrors.ErrUnauthenticated, MsgInvalidToken)
	}

	email, err := s.verifier.VerifyEmail(ctx, idToken)
	if err != nil {
		s.logger.Warn("Token validation failed", zap.Error(err))
		return "", apperrors.New(apperrors.ErrUnauthenticated, MsgInvalidToken)
	}
	if strings.TrimSpace(email) == "" {
		return "", apperrors.New(apperrors.ErrUnauthenticated, MsgInvalidToken)
	}
	return email, nil
}

func (s *Service) signIn(ctx context.Context, email string) (*model.Profile, error) {
	user, err := s.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrAccessDenied, MsgNotRegistered)
	}

	if err := s.users.UpdateLastLogin(ctx, user.Email, s.timestamp()); err != nil {
		s.logger.Warn("Failed to update last login", zap.String("email", user.Email), zap.Error(err))
	}

	profile := user.Profile()
	s.logger.Info("User signed in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return &profile, nil
}

func (s *Service) requireAdmin(ctx context.Context, requester string) error {
	user, err := s.Lookup(ctx, requester)
	if err != nil {
		return err
	}
	if user == nil || user.Role != model.RoleAdmin {
		return apperrors.New(apperrors.ErrForbidden, MsgAdminOnly)
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
