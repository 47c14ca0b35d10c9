package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/env"
	"github.com/glimmerlab/glimmer/internal/pkg/imagegen"
	"github.com/glimmerlab/glimmer/internal/pkg/ledger"
	"github.com/glimmerlab/glimmer/internal/pkg/usercontext"
)

// creditLedger is the slice of the ledger the generation handler needs.
type creditLedger interface {
	Balance(ctx context.Context, userID uint) (int, error)
	Debit(ctx context.Context, userID uint, amount int, description string) (int, error)
}

// GenerateController handles credit-metered image generation.
type GenerateController struct {
	repos  *repository.Repositories
	ledger creditLedger
	log    *slog.Logger
}

// NewGenerateController creates the generation controller.
func NewGenerateController(repos *repository.Repositories, lgr creditLedger, log *slog.Logger) *GenerateController {
	return &GenerateController{repos: repos, ledger: lgr, log: log}
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	NumImages int    `json:"num_images"`
}

func imageCost() int {
	return env.GetInt("IMAGE_COST", 5)
}

// HandleGenerate renders images and bills only for the ones that succeeded.
// The balance is pre-checked against the full request so a user cannot start
// a batch they could never pay for, but the debit happens after generation
// for the actual success count.
func (gc *GenerateController) HandleGenerate(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Prompt == "" {
		return badRequest(c, "Prompt is required")
	}
	if req.NumImages == 0 {
		req.NumImages = 1
	}
	count := imagegen.ClampCount(req.NumImages)

	apiKey := env.GetEnv("NEW_API_KEY", env.GetEnv("API_KEY", ""))
	if apiKey == "" {
		return serverError(c, "Server Configuration Error: NEW_API_KEY missing")
	}

	cost := imageCost()
	required := cost * count

	balance, err := gc.ledger.Balance(c.Context(), userID)
	if err != nil {
		gc.log.Error("balance lookup failed", "user_id", userID, "err", err)
		return serverError(c, "Failed to check credits")
	}
	if balance < required {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":     "Insufficient Credits",
			"message":   fmt.Sprintf("You need %d credits for %d images but have %d.", required, count, balance),
			"required":  required,
			"available": balance,
		})
	}

	client := imagegen.NewClient(imagegen.Options{
		APIKey:   apiKey,
		Model:    env.GetEnv("PROVIDER_MODEL", ""),
		Endpoint: env.GetEnv("API_ENDPOINT", ""),
	}, gc.log)

	images, err := client.Generate(c.Context(), req.Prompt, count)
	if err != nil {
		if errors.Is(err, imagegen.ErrNoImagesGenerated) {
			return jsonError(c, fiber.StatusBadGateway, "Generation Failed", err.Error())
		}
		return badRequest(c, err.Error())
	}

	charged := cost * len(images)
	newBalance, err := gc.ledger.Debit(c.Context(), userID, charged,
		fmt.Sprintf("Generated %d image(s)", len(images)))
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			// Balance moved between the pre-check and the debit.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "Insufficient Credits",
				"message":  "Your balance changed while generating. No credits were charged.",
				"required": charged,
			})
		}
		gc.log.Error("debit failed after generation", "user_id", userID, "charged", charged, "err", err)
		return serverError(c, "Failed to charge credits")
	}

	return c.JSON(fiber.Map{
		"images":      images,
		"new_credits": newBalance,
	})
}
