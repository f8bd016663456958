package handlers

import (
	"time"

	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/core/services"
	"hostel-leave-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// ForgotPasswordRequest represents forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents reset password request body
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Register handles user registration
// @Summary Register new user
// @Description Create a student account and return a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	result, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return response.Created(c, "Registration successful", fiber.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password; sets the access_token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	result, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, result.Token)

	return response.Success(c, "Login successful", fiber.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// GoogleLogin handles federated login
// @Summary Federated login
// @Description Sign in (or sign up) with a profile vouched for by Google; sets the access_token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.FederatedLoginInput true "Federated profile"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Router /auth/google-login [post]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req services.FederatedLoginInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	result, err := h.authService.FederatedLogin(c.UserContext(), &req)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, result.Token)

	return response.Success(c, "Google login successful", fiber.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Clear the session cookie; always succeeds
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearAuthCookie(c)
	return response.Success(c, "Logout successful", nil)
}

// ForgotPassword issues a reset token and emails the link
// @Summary Request password reset
// @Description Email a reset link valid for 15 minutes
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}

	return response.Success(c, "Password reset link sent", nil)
}

// ResetPassword consumes a reset token
// @Summary Reset password
// @Description Set a new password using the emailed token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body ResetPasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Router /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	if err := h.authService.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		return err
	}

	return response.Success(c, "Password reset successful", nil)
}

// setAuthCookie sets the session cookie
func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.TokenTTL().Seconds()),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookie expires the session cookie
func (h *AuthHandler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
