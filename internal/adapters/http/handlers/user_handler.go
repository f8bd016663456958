package handlers

import (
	"io"
	"strings"

	"hostel-leave-api/internal/adapters/http/middleware"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/core/services"
	"hostel-leave-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxAvatarBytes caps the uploaded avatar size
const maxAvatarBytes = 5 << 20

// UserHandler handles profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUser returns the minimal profile of a user (self or admin)
// @Summary Get user by ID
// @Description Minimal profile (name, email, avatar, room, phone) used to prefill forms
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userid path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /user/get-user/{userid} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return response.Success(c, "User data found", fiber.Map{"user": user})
}

// Me returns the caller's extended profile
// @Summary Get current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Router /user/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.userService.GetOwnProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return response.Success(c, "Current user data", fiber.Map{"user": user})
}

// UpdateUser applies a partial profile update (self or admin).
// Accepts a JSON body, or multipart with a JSON "data" field and an optional "file" avatar.
// @Summary Update user
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param userid path string true "User ID"
// @Param data formData string false "JSON encoded profile fields"
// @Param file formData file false "Avatar image"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /user/update-user/{userid} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var input services.UpdateProfileInput

	if data := c.FormValue("data"); data != "" {
		if err := c.App().Config().JSONDecoder([]byte(data), &input); err != nil {
			return domain.ErrBadRequest
		}
	} else if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) && len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return domain.ErrBadRequest
		}
	}

	var avatar io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxAvatarBytes {
			return domain.NewError(fiber.StatusRequestEntityTooLarge, "Avatar must be 5MB or smaller")
		}
		f, err := fh.Open()
		if err != nil {
			return domain.ErrBadRequest
		}
		defer f.Close()
		avatar = f
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), c.Params("userid"), &input, avatar)
	if err != nil {
		return err
	}
	return response.Success(c, "User updated successfully", fiber.Map{"user": user})
}

// CompleteProfile sets the caller's room number and phone
// @Summary Complete profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CompleteProfileInput true "Room and phone"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Router /user/complete-profile [post]
func (h *UserHandler) CompleteProfile(c *fiber.Ctx) error {
	var input services.CompleteProfileInput
	if err := c.BodyParser(&input); err != nil {
		return domain.ErrBadRequest
	}

	user, err := h.userService.CompleteProfile(c.UserContext(), middleware.UserID(c), &input)
	if err != nil {
		return err
	}
	return response.Success(c, "Profile updated successfully", fiber.Map{"user": user})
}
