package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/cache"
	"github.com/glimmerlab/glimmer/internal/pkg/database"
	"github.com/glimmerlab/glimmer/internal/pkg/ledger"
	"github.com/glimmerlab/glimmer/internal/pkg/usercontext"
)

// planLabelCredits extracts a credit amount from a human-written plan label
// like "500 Credits Pack". Used only when a request carries no structured
// credit count.
var planLabelCredits = regexp.MustCompile(`(\d+)\s*Credits`)

// AdminController handles the admin panel API.
type AdminController struct {
	repos  *repository.Repositories
	ledger *ledger.Service
	log    *slog.Logger
}

// NewAdminController creates an admin controller with repository dependencies.
func NewAdminController(repos *repository.Repositories, lgr *ledger.Service, log *slog.Logger) *AdminController {
	return &AdminController{repos: repos, ledger: lgr, log: log}
}

// HandleListUsers returns a page of users with the total count.
func (ac *AdminController) HandleListUsers(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	users, err := ac.repos.User.List(offset, limit)
	if err != nil {
		return serverError(c, "Failed to load users")
	}
	total, err := ac.repos.User.Count()
	if err != nil {
		return serverError(c, "Failed to count users")
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
	})
}

type setCreditsRequest struct {
	Credits int `json:"credits"`
}

// HandleSetUserCredits sets a user's balance to an absolute value and records
// the difference in the ledger.
func (ac *AdminController) HandleSetUserCredits(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return badRequest(c, "Invalid user id")
	}

	var req setCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Credits < 0 {
		return badRequest(c, "Credits cannot be negative")
	}

	balance, err := ac.ledger.AdjustTo(c.Context(), uint(userID), req.Credits,
		fmt.Sprintf("Balance adjusted by admin (user %d)", usercontext.UserID(c)))
	if err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		ac.log.Error("credit adjustment failed", "user_id", userID, "err", err)
		return serverError(c, "Failed to update credits")
	}

	return c.JSON(fiber.Map{"credits": balance})
}

// HandleDeleteUser removes a user account. Admins cannot delete themselves.
func (ac *AdminController) HandleDeleteUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return badRequest(c, "Invalid user id")
	}
	if uint(userID) == usercontext.UserID(c) {
		return badRequest(c, "You cannot delete your own account")
	}

	if _, err := ac.repos.User.GetByID(uint(userID)); err != nil {
		return notFound(c, "User not found")
	}
	if err := ac.repos.User.Delete(uint(userID)); err != nil {
		ac.log.Error("user deletion failed", "user_id", userID, "err", err)
		return serverError(c, "Failed to delete user")
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

// HandleListTransactions returns gateway transactions with optional
// gateway/status filters.
func (ac *AdminController) HandleListTransactions(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	txns, err := ac.repos.Transaction.List(c.Query("gateway"), c.Query("status"), offset, limit)
	if err != nil {
		return serverError(c, "Failed to load transactions")
	}
	return c.JSON(fiber.Map{"transactions": txns})
}

// HandleListPaymentRequests returns manual payment requests, optionally
// filtered by status.
func (ac *AdminController) HandleListPaymentRequests(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	reqs, err := ac.repos.PaymentRequest.List(c.Query("status"), offset, limit)
	if err != nil {
		return serverError(c, "Failed to load payment requests")
	}
	return c.JSON(fiber.Map{"requests": reqs})
}

// resolveRequestCredits determines how many credits an approval grants: the
// structured field when present, otherwise a number parsed from the plan
// label.
func resolveRequestCredits(pr *models.PaymentRequest) (int, error) {
	if pr.Credits > 0 {
		return pr.Credits, nil
	}
	if m := planLabelCredits.FindStringSubmatch(pr.Plan); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("request %d has no resolvable credit amount", pr.ID)
}

// HandleApprovePaymentRequest approves a pending manual request and credits
// the buyer. The status transition and the credit happen in one database
// transaction, so an approval can never be applied twice.
func (ac *AdminController) HandleApprovePaymentRequest(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID < 1 {
		return badRequest(c, "Invalid request id")
	}

	var (
		credits int
		userID  uint
	)
	err = database.GetDB().WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		var pr models.PaymentRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pr, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return err
		}
		if pr.Status != models.RequestStatusPending {
			return fmt.Errorf("request is already %s", pr.Status)
		}

		amount, err := resolveRequestCredits(&pr)
		if err != nil {
			return err
		}
		credits = amount
		userID = pr.UserID

		if err := tx.Model(&models.PaymentRequest{}).
			Where("id = ?", pr.ID).
			Update("status", models.RequestStatusApproved).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", pr.UserID).
			UpdateColumn("credits", gorm.Expr("credits + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d not found", pr.UserID)
		}

		entry := models.CreditHistory{
			UserID:      pr.UserID,
			Amount:      amount,
			Type:        models.CreditTypeAdded,
			Description: fmt.Sprintf("Manual payment approved (UTR %s)", pr.UTRCode),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Payment request not found")
		}
		ac.log.Error("payment request approval failed", "request_id", requestID, "err", err)
		return badRequest(c, err.Error())
	}

	ac.log.Info("payment request approved", "request_id", requestID, "user_id", userID, "credits", credits)
	return c.JSON(fiber.Map{
		"message": "Payment request approved",
		"credits": credits,
	})
}

// HandleRejectPaymentRequest rejects a pending manual request. No credits
// move.
func (ac *AdminController) HandleRejectPaymentRequest(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID < 1 {
		return badRequest(c, "Invalid request id")
	}

	res := database.GetDB().WithContext(c.Context()).
		Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Update("status", models.RequestStatusRejected)
	if res.Error != nil {
		ac.log.Error("payment request rejection failed", "request_id", requestID, "err", res.Error)
		return serverError(c, "Failed to reject payment request")
	}
	if res.RowsAffected == 0 {
		pr, err := ac.repos.PaymentRequest.GetByID(uint(requestID))
		if err != nil || pr == nil {
			return notFound(c, "Payment request not found")
		}
		return badRequest(c, fmt.Sprintf("Request is already %s", pr.Status))
	}

	return c.JSON(fiber.Map{"message": "Payment request rejected"})
}

type planInput struct {
	Credits  int     `json:"credits"`
	INRPrice float64 `json:"inr_price"`
	USDPrice float64 `json:"usd_price"`
}

// HandleCreatePlan adds a credit plan to the catalog.
func (ac *AdminController) HandleCreatePlan(c *fiber.Ctx) error {
	var req planInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Credits <= 0 {
		return badRequest(c, "Credits must be positive")
	}

	plan := &models.CreditPlan{
		Credits:  req.Credits,
		INRPrice: req.INRPrice,
		USDPrice: req.USDPrice,
	}
	if err := ac.repos.CreditPlan.Create(plan); err != nil {
		return serverError(c, "Failed to create plan")
	}
	ac.invalidatePlansCache()
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleUpdatePlan updates an existing credit plan.
func (ac *AdminController) HandleUpdatePlan(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("id")
	if err != nil || planID < 1 {
		return badRequest(c, "Invalid plan id")
	}

	plan, err := ac.repos.CreditPlan.GetByID(uint(planID))
	if err != nil || plan == nil {
		return notFound(c, "Plan not found")
	}

	var req planInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Credits <= 0 {
		return badRequest(c, "Credits must be positive")
	}

	plan.Credits = req.Credits
	plan.INRPrice = req.INRPrice
	plan.USDPrice = req.USDPrice
	if err := ac.repos.CreditPlan.Update(plan); err != nil {
		return serverError(c, "Failed to update plan")
	}
	ac.invalidatePlansCache()
	return c.JSON(plan)
}

// HandleDeletePlan removes a credit plan from the catalog.
func (ac *AdminController) HandleDeletePlan(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("id")
	if err != nil || planID < 1 {
		return badRequest(c, "Invalid plan id")
	}

	if _, err := ac.repos.CreditPlan.GetByID(uint(planID)); err != nil {
		return notFound(c, "Plan not found")
	}
	if err := ac.repos.CreditPlan.Delete(uint(planID)); err != nil {
		return serverError(c, "Failed to delete plan")
	}
	ac.invalidatePlansCache()
	return c.JSON(fiber.Map{"message": "Plan deleted"})
}

func (ac *AdminController) invalidatePlansCache() {
	if err := cache.Delete(publicPlansCacheKey); err != nil {
		ac.log.Warn("plans cache invalidation failed", "err", err)
	}
}

type settingInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var settableKeys = map[string]bool{
	models.SettingGlobalNotice:      true,
	models.SettingCreditsPageNotice: true,
	models.SettingTermsOfService:    true,
	models.SettingPrivacyPolicy:     true,
	models.SettingSocialMediaLinks:  true,
	models.SettingContactDetails:    true,
}

// HandleUpdateSetting upserts one site-content setting and invalidates the
// cached public snapshot.
func (ac *AdminController) HandleUpdateSetting(c *fiber.Ctx) error {
	var req settingInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !settableKeys[req.Key] {
		return badRequest(c, "Unknown setting key")
	}

	if err := models.SaveSetting(database.GetDB(), req.Key, req.Value); err != nil {
		ac.log.Error("setting update failed", "key", req.Key, "err", err)
		return serverError(c, "Failed to update setting")
	}

	if err := cache.Delete(publicSettingsCacheKey); err != nil {
		ac.log.Warn("settings cache invalidation failed", "err", err)
	}

	return c.JSON(fiber.Map{
		"message":  "Setting updated",
		"settings": models.GetAppSettings(),
	})
}

// HandleAllCreditHistory returns ledger entries across all users.
func (ac *AdminController) HandleAllCreditHistory(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	entries, err := ac.repos.CreditHistory.ListAll(offset, limit)
	if err != nil {
		return serverError(c, "Failed to load credit history")
	}
	return c.JSON(fiber.Map{"history": entries})
}
