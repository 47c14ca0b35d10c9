package controllers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/env"
	"github.com/glimmerlab/glimmer/internal/pkg/middleware"
	"github.com/glimmerlab/glimmer/internal/pkg/usercontext"
)

// AuthController handles registration, login and profile access.
type AuthController struct {
	repos *repository.Repositories
	log   *slog.Logger
}

// NewAuthController creates an auth controller with repository dependencies.
func NewAuthController(repos *repository.Repositories, log *slog.Logger) *AuthController {
	return &AuthController{repos: repos, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country"`
	DeviceID string `json:"device_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and grants the signup credit bonus. A
// device id that has already claimed the bonus registers with zero credits.
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Name, email and password are required")
	}
	if len(req.Password) < 6 {
		return badRequest(c, "Password must be at least 6 characters")
	}

	if existing, err := ac.repos.User.GetByEmail(req.Email); err == nil && existing != nil {
		return badRequest(c, "An account with this email already exists")
	}

	initialCredits := env.GetInt("INITIAL_CREDITS", 25)
	if req.DeviceID != "" {
		used, err := ac.repos.User.IsDeviceUsed(req.DeviceID)
		if err != nil {
			ac.log.Error("device lookup failed", "err", err)
			return serverError(c, "Registration failed")
		}
		if used {
			initialCredits = 0
		}
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password, req.Country, initialCredits)
	if err != nil {
		return badRequest(c, "Invalid registration details")
	}

	if err := ac.repos.User.Create(user); err != nil {
		ac.log.Error("user creation failed", "email", req.Email, "err", err)
		return badRequest(c, "An account with this email already exists")
	}

	if req.DeviceID != "" {
		if err := ac.repos.User.MarkDeviceUsed(req.DeviceID, user.ID); err != nil {
			ac.log.Warn("device registration failed", "user_id", user.ID, "err", err)
		}
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		ac.log.Error("token generation failed", "user_id", user.ID, "err", err)
		return serverError(c, "Registration succeeded but login failed, please sign in")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleLogin authenticates by email and password. Wrong email and wrong
// password produce the same response.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := ac.repos.User.GetByEmail(req.Email)
	if err != nil || user == nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		ac.log.Error("token generation failed", "user_id", user.ID, "err", err)
		return serverError(c, "Login failed")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleProfile returns the authenticated user with the live credit balance.
func (ac *AuthController) HandleProfile(c *fiber.Ctx) error {
	user, err := ac.repos.User.GetByID(usercontext.UserID(c))
	if err != nil || user == nil {
		return notFound(c, "User not found")
	}
	return c.JSON(fiber.Map{"user": user})
}
