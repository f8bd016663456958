package response

import "github.com/gofiber/fiber/v2"

// ErrorBody is the uniform error envelope
type ErrorBody struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// JSON sends {"success": true, "message": ..., <data keys>} with the given status
func JSON(c *fiber.Ctx, status int, message string, data fiber.Map) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data fiber.Map) error {
	return JSON(c, fiber.StatusOK, message, data)
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data fiber.Map) error {
	return JSON(c, fiber.StatusCreated, message, data)
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
	})
}

// ValidationFailed sends a 400 with per-field messages
func ValidationFailed(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{
		Success:    false,
		StatusCode: fiber.StatusBadRequest,
		Message:    "Validation failed",
		Errors:     fields,
	})
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusTooManyRequests, message)
}
