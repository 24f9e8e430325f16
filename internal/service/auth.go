package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	MinUserPasswordLen  = 6
	MinAdminPasswordLen = 8

	defaultAccessTTL = 15 * time.Minute
	defaultInviteTTL = 72 * time.Hour
)

type AuthService struct {
	Repo      *repo.GormRepo
	Events    mykafka.Publisher
	JWTSecret []byte
	AccessTTL time.Duration
	InviteTTL time.Duration
}

type RegisterUserRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Password  string `json:"password"   validate:"required"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
	Phone     string `json:"phone"      validate:"max=20"`
}

type RegisterAdminRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Username    string `json:"username"     validate:"required,min=3,max=80"`
	Password    string `json:"password"     validate:"required"`
	FullName    string `json:"full_name"    validate:"max=100"`
	InviteToken string `json:"invite_token" validate:"required"`
}

type SuperAdminRequest struct {
	Email    string
	Username string
	Password string
	FullName string
}

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *AuthService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register_user")

	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" {
		return nil, fmt.Errorf("%w: email and username are required", ErrValidation)
	}

	if taken, err := s.Repo.UserEmailExists(ctx, email); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	} else if taken {
		l.Warn("register_user_rejected", "reason", "duplicate_email")
		return nil, ErrDuplicateEmail
	}
	if taken, err := s.Repo.UsernameExists(ctx, username); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	} else if taken {
		l.Warn("register_user_rejected", "reason", "duplicate_username")
		return nil, ErrDuplicateUsername
	}
	if len(req.Password) < MinUserPasswordLen {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinUserPasswordLen)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_user_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("register user: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, s.userDuplicateCause(ctx, email)
		}
		l.Error("register_user_error", "error", err)
		return nil, fmt.Errorf("register user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), mykafka.UserEvent{
		Type:       "user_registered",
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})
	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// userDuplicateCause resolves a unique-index race to the specific duplicate error.
func (s *AuthService) userDuplicateCause(ctx context.Context, email string) error {
	if taken, err := s.Repo.UserEmailExists(ctx, email); err == nil && taken {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

func (s *AuthService) LoginUser(ctx context.Context, identifier, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login_user")

	user, err := s.Repo.GetUserByEmail(ctx, identifier)
	if isNotFound(err) {
		user, err = s.Repo.GetUserByUsername(ctx, identifier)
	}
	if isNotFound(err) {
		l.Warn("login_failed", "reason", "unknown identifier")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login user: %w", err)
	}

	if !user.IsActive {
		l.Warn("login_failed", "reason", "deactivated", "user_id", user.ID)
		return nil, ErrAccountDeactivated
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchUserLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("login user: %w", err)
	}
	user.LastLogin = &now

	l.Info("login_successful", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, identifier, password string) (*models.Admin, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login_admin")

	admin, err := s.Repo.GetAdminByEmail(ctx, identifier)
	if isNotFound(err) {
		admin, err = s.Repo.GetAdminByUsername(ctx, identifier)
	}
	if isNotFound(err) {
		l.Warn("admin_login_failed", "reason", "unknown identifier")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login admin: %w", err)
	}

	if !admin.IsActive {
		l.Warn("admin_login_failed", "reason", "deactivated", "admin_id", admin.ID)
		return nil, ErrAccountDeactivated
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("admin_login_failed", "reason", "bad password", "admin_id", admin.ID)
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchAdminLogin(ctx, admin.ID, now); err != nil {
		return nil, fmt.Errorf("login admin: %w", err)
	}
	admin.LastLogin = &now

	l.Info("admin_login_successful", "admin_id", admin.ID)
	return admin, nil
}

// IssueAdminInvitation mints a single-use registration token. Only active
// super admins may invite.
func (s *AuthService) IssueAdminInvitation(ctx context.Context, issuerID uint, email string, role models.AdminRole) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue_invitation")

	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if role == "" {
		role = models.RoleAdmin
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	issuer, err := s.Repo.GetAdminByID(ctx, issuerID)
	if isNotFound(err) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", fmt.Errorf("issue invitation: %w", err)
	}
	if !issuer.IsActive || !issuer.IsSuperAdmin() {
		l.Warn("issue_invitation_rejected", "admin_id", issuerID)
		return "", ErrForbidden
	}

	inv := &models.AdminInvitation{
		JTI:       uuid.NewString(),
		Email:     email,
		Role:      role,
		IssuedBy:  issuer.ID,
		ExpiresAt: time.Now().UTC().Add(ttlOr(s.InviteTTL, defaultInviteTTL)),
	}
	token, err := tokens.NewInviteToken(s.JWTSecret, inv.JTI, inv.Email, string(inv.Role), strconv.FormatUint(uint64(issuer.ID), 10), inv.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("issue invitation: %w", err)
	}
	if err := s.Repo.CreateInvitation(ctx, inv); err != nil {
		return "", fmt.Errorf("issue invitation: %w", err)
	}

	l.Info("invitation_issued", "admin_id", issuer.ID, "role", inv.Role)
	return token, nil
}

// RegisterAdmin consumes an invitation and creates the admin in one transaction.
func (s *AuthService) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*models.Admin, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register_admin")

	claims, err := tokens.InviteClaimsFromToken(req.InviteToken, s.JWTSecret)
	if err != nil {
		l.Warn("register_admin_rejected", "reason", "bad invitation", "error", err)
		return nil, ErrInvalidInvitation
	}

	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if !strings.EqualFold(claims.Email, email) {
		l.Warn("register_admin_rejected", "reason", "email mismatch")
		return nil, ErrInvalidInvitation
	}

	var admin *models.Admin
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		inv, err := tx.GetInvitationForUpdate(ctx, claims.ID)
		if isNotFound(err) {
			return ErrInvalidInvitation
		}
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if inv.UsedAt != nil || now.After(inv.ExpiresAt) {
			return ErrInvalidInvitation
		}

		if taken, err := tx.AdminEmailExists(ctx, email); err != nil {
			return err
		} else if taken {
			return ErrDuplicateEmail
		}
		if taken, err := tx.AdminUsernameExists(ctx, username); err != nil {
			return err
		} else if taken {
			return ErrDuplicateUsername
		}
		if len(req.Password) < MinAdminPasswordLen {
			return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinAdminPasswordLen)
		}

		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return err
		}
		admin = &models.Admin{
			Email:        email,
			Username:     username,
			PasswordHash: pwHash,
			FullName:     req.FullName,
			Role:         inv.Role,
			IsActive:     true,
		}
		if err := tx.CreateAdmin(ctx, admin); err != nil {
			return err
		}
		return tx.MarkInvitationUsed(ctx, inv.ID, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInvitation), errors.Is(err, ErrDuplicateEmail),
			errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrWeakPassword):
			l.Warn("register_admin_rejected", "error", err)
			return nil, err
		case isDuplicate(err):
			return nil, ErrDuplicateUsername
		case isNotFound(err):
			return nil, ErrInvalidInvitation
		}
		l.Error("register_admin_error", "error", err)
		return nil, fmt.Errorf("register admin: %w", err)
	}

	l.Info("admin_registered", "admin_id", admin.ID, "role", admin.Role)
	return admin, nil
}

// CreateSuperAdmin bootstraps a super admin without an invitation. It is only
// reachable from the command line.
func (s *AuthService) CreateSuperAdmin(ctx context.Context, req SuperAdminRequest) (*models.Admin, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: email and username are required", ErrValidation)
	}
	if taken, err := s.Repo.AdminEmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateEmail
	}
	if taken, err := s.Repo.AdminUsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateUsername
	}
	if len(req.Password) < MinAdminPasswordLen {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinAdminPasswordLen)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Email:        strings.TrimSpace(req.Email),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.Repo.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("create super admin: %w", err)
	}
	logging.FromContext(ctx).Info("super_admin_created", "admin_id", admin.ID)
	return admin, nil
}

func (s *AuthService) IssueAccessToken(subjectID uint, kind, role string) (AccessToken, error) {
	exp := time.Now().Add(ttlOr(s.AccessTTL, defaultAccessTTL))
	token, err := tokens.NewAccessToken(s.JWTSecret, strconv.FormatUint(uint64(subjectID), 10), kind, role, exp)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: token, ExpiresAt: exp}, nil
}

func ttlOr(ttl, def time.Duration) time.Duration {
	if ttl <= 0 {
		return def
	}
	return ttl
}
