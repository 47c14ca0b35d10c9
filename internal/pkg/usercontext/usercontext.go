// Package usercontext carries the authenticated identity through a request.
package usercontext

import "github.com/gofiber/fiber/v2"

const (
	KeyUserID  = "auth_user_id"
	KeyEmail   = "auth_email"
	KeyIsAdmin = "auth_is_admin"
)

// SetUser stores the authenticated identity on the request context.
func SetUser(c *fiber.Ctx, userID uint, email string, isAdmin bool) {
	c.Locals(KeyUserID, userID)
	c.Locals(KeyEmail, email)
	c.Locals(KeyIsAdmin, isAdmin)
}

// UserID returns the authenticated user id, or 0 when unauthenticated.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(KeyUserID).(uint); ok {
		return id
	}
	return 0
}

// Email returns the authenticated email, or "".
func Email(c *fiber.Ctx) string {
	if email, ok := c.Locals(KeyEmail).(string); ok {
		return email
	}
	return ""
}

// IsAdmin reports whether the request carries an admin identity.
func IsAdmin(c *fiber.Ctx) bool {
	if admin, ok := c.Locals(KeyIsAdmin).(bool); ok {
		return admin
	}
	return false
}
