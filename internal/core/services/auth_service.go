package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/jwt"
	"hostel-leave-api/internal/pkg/metrics"
	"hostel-leave-api/internal/pkg/password"
	"hostel-leave-api/internal/pkg/validation"
)

// resetTokenBytes is the entropy of a password reset token before hex encoding
const resetTokenBytes = 32

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   jwt.Issuer
	mailer   Mailer
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokens jwt.Issuer,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginInput carries the profile asserted by the external identity provider
type FederatedLoginInput struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

var registerMessages = validation.Messages{
	"name":           "Name is required",
	"email":          "A valid email is required",
	"phone":          "Phone number must have at least 10 digits",
	"password":       "Password is required",
	"password.min":   "Password must be at least 8 characters",
	"email.required": "Email is required",
}

var loginMessages = validation.Messages{
	"email":    "A valid email is required",
	"password": "Password is required",
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register registers a new student account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Error(validation.Struct(input, registerMessages)); err != nil {
		return nil, err
	}

	// 1. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 2. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 3. Create user
	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashedPassword,
		Role:     string(domain.RoleStudent),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	log.Printf("✅ User registered: %s", user.Email)
	return s.issue(user)
}

// Login authenticates a user with email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validation.Error(validation.Struct(input, loginMessages)); err != nil {
		return nil, err
	}

	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.Logins.WithLabelValues("password", "unknown_email").Inc()
			return nil, domain.ErrUnknownCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		metrics.Logins.WithLabelValues("password", "bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues("password", "success").Inc()
	log.Printf("✅ User logged in: %s", user.Email)
	return s.issue(user)
}

// FederatedLogin signs in a user vouched for by an external identity provider,
// creating the account on first sight with an unusable random password.
func (s *AuthService) FederatedLogin(ctx context.Context, input *FederatedLoginInput) (*AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validation.Error(validation.Struct(input, nil)); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if user == nil {
		placeholder, err := password.RandomToken(resetTokenBytes)
		if err != nil {
			return nil, err
		}
		hashedPassword, err := password.Hash(placeholder)
		if err != nil {
			return nil, err
		}

		user = &models.User{
			Name:     input.Name,
			Email:    input.Email,
			Avatar:   input.Avatar,
			Password: hashedPassword,
			Role:     string(domain.RoleStudent),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				// lost a race with a concurrent first login; reuse the winner
				return s.reuseExisting(ctx, input.Email)
			}
			return nil, err
		}
		log.Printf("✅ User created via federated login: %s", user.Email)
	}

	metrics.Logins.WithLabelValues("federated", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) reuseExisting(ctx context.Context, email string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues("federated", "success").Inc()
	return s.issue(user)
}

// RequestPasswordReset stores a fresh reset token and emails the reset link.
// A dispatch failure is returned as-is; the stored token stays valid until it expires.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &domain.ValidationError{Fields: map[string]string{"email": "Email is required"}}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := password.RandomToken(resetTokenBytes)
	if err != nil {
		return err
	}

	tokenHash := password.HashToken(token)
	expiry := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetToken = &tokenHash
	user.ResetTokenExpiry = &expiry

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	metrics.PasswordResets.WithLabelValues("requested").Inc()

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, s.cfg.ResetURL(token)); err != nil {
		metrics.PasswordResets.WithLabelValues("email_failed").Inc()
		log.Printf("❌ Failed to send reset email to %s: %v", user.Email, err)
		return domain.ErrResetEmailFailed.Wrap(err)
	}

	log.Printf("📧 Password reset link sent to %s", user.Email)
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrInvalidResetToken
	}
	if !password.ValidatePassword(newPassword) {
		return domain.ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByResetToken(ctx, password.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.PasswordResets.WithLabelValues("rejected").Inc()
			return domain.ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	user.ClearResetToken()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	metrics.PasswordResets.WithLabelValues("completed").Inc()
	log.Printf("✅ Password reset completed for %s", user.Email)
	return nil
}

// issue signs a session token for the user
func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Generate(jwt.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// TokenTTL returns the session lifetime used for the cookie max age
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
