package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Context keys set by the auth middlewares
const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalClaims = "claims"
)

var (
	errTokenRequired = domain.NewError(http.StatusUnauthorized, "Access token required")
	errTokenExpired  = domain.NewError(http.StatusUnauthorized, "Access token expired")
	errTokenInvalid  = domain.NewError(http.StatusUnauthorized, "Invalid access token")
)

// extractToken reads the session cookie first, then a Bearer Authorization header
func extractToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func setIdentity(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalClaims, claims)
}

// AuthMiddleware rejects requests without a valid session token
func AuthMiddleware(tokens jwt.Issuer, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c, cookieName)
		if accessToken == "" {
			return errTokenRequired
		}

		claims, err := tokens.Validate(accessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return errTokenExpired
			}
			return errTokenInvalid
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth middleware - doesn't require auth but sets user info if token present
func OptionalAuth(tokens jwt.Issuer, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := extractToken(c, cookieName); accessToken != "" {
			if claims, err := tokens.Validate(accessToken); err == nil {
				setIdentity(c, claims)
			}
		}
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(forbidden error, allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return domain.ErrUnauthorized
		}

		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return forbidden
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.ErrAdminOnly, domain.RoleAdmin)
}

// SelfOrAdmin allows the request when the route parameter names the caller, or the caller is an admin
func SelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return domain.ErrUnauthorized
		}
		if c.Params(param) == userID || Role(c) == string(domain.RoleAdmin) {
			return c.Next()
		}
		return domain.ErrForbidden
	}
}

// UserID returns the authenticated caller's id ("" when anonymous)
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// Role returns the authenticated caller's role ("" when anonymous)
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

// Claims returns the decoded session token, or nil when anonymous
func Claims(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(LocalClaims).(*jwt.Claims)
	return claims
}
