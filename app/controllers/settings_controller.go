package controllers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/cache"
)

const (
	publicSettingsCacheKey = "public:settings"
	publicPlansCacheKey    = "public:plans"
	publicContentCacheTTL  = 5 * time.Minute
)

// SettingsController serves the public, unauthenticated site content.
type SettingsController struct {
	repos *repository.Repositories
	log   *slog.Logger
}

// NewSettingsController creates the public content controller.
func NewSettingsController(repos *repository.Repositories, log *slog.Logger) *SettingsController {
	return &SettingsController{repos: repos, log: log}
}

// HandlePublicSettings returns the site-content settings, served from cache
// when warm.
func (sc *SettingsController) HandlePublicSettings(c *fiber.Ctx) error {
	if cached, err := cache.Get(publicSettingsCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	settings := models.GetAppSettings()
	if payload, err := json.Marshal(settings); err == nil {
		if err := cache.Set(publicSettingsCacheKey, string(payload), publicContentCacheTTL); err != nil {
			sc.log.Warn("settings cache write failed", "err", err)
		}
	}

	return c.JSON(settings)
}

// HandleListPlans returns the credit plan catalog, served from cache when
// warm.
func (sc *SettingsController) HandleListPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(publicPlansCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	plans, err := sc.repos.CreditPlan.GetAll()
	if err != nil {
		return serverError(c, "Failed to load credit plans")
	}

	body := fiber.Map{"plans": plans}
	if payload, err := json.Marshal(body); err == nil {
		if err := cache.Set(publicPlansCacheKey, string(payload), publicContentCacheTTL); err != nil {
			sc.log.Warn("plans cache write failed", "err", err)
		}
	}
	return c.JSON(body)
}
