package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/internal/pkg/env"
	"github.com/glimmerlab/glimmer/internal/pkg/usercontext"
)

const tokenLifetime = 7 * 24 * time.Hour

// Claims is the JWT payload issued on login. UserID is duplicated under two
// names because older clients still read the camelCase field.
type Claims struct {
	UserID   uint   `json:"user_id"`
	UserIDv1 uint   `json:"userId"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func jwtSecret() ([]byte, error) {
	secret := env.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return []byte(secret), nil
}

// GenerateToken signs a 7-day HS256 token for the user.
func GenerateToken(user *models.User) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		UserIDv1: user.ID,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == 0 && claims.UserIDv1 != 0 {
		claims.UserID = claims.UserIDv1
	}
	return claims, nil
}

// JWTProtected rejects requests without a valid bearer token and stores the
// identity on the request context for downstream handlers.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, "Authentication required")
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		usercontext.SetUser(c, claims.UserID, claims.Email, claims.IsAdmin)
		return c.Next()
	}
}

// RequireAdmin rejects authenticated requests that lack the admin flag. Must
// run after JWTProtected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !usercontext.IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "Unauthorized",
		"message": message,
	})
}
