// handlers/reward_routes.go
package handlers

import (
	"errors"
	"time"

	"daily-rewards-system/middleware"
	"daily-rewards-system/models"
	"daily-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RewardDeps bundles what the reward routes need. Snapshot is nil when audit
// snapshot storage is not configured.
type RewardDeps struct {
	DB           *gorm.DB
	Orchestrator *services.AwardOrchestrator
	AwardLog     *services.AwardLogService
	CronSecret   string
	Snapshot     services.SnapshotFunc
}

func SetupRewardRoutes(app *fiber.App, deps RewardDeps) {
	// 🔐 Administrative surface — external scheduler + operators, guarded by
	// the shared cron secret.
	admin := app.Group("/s/admin/rewards", middleware.CronAuthMiddleware(deps.CronSecret))

	// Trigger for the daily run. Always answers 200 with the full RunResults
	// unless the eligibility query itself failed: a per-subject failure is
	// reported inside the payload, never as an HTTP-level failure.
	admin.Post("/daily/run", func(c *fiber.Ctx) error {
		var req struct {
			PeriodKey string `json:"period_key"`
		}
		_ = c.BodyParser(&req) // body is optional; default is today

		periodKey := req.PeriodKey
		if periodKey == "" {
			periodKey = services.PeriodKeyFor(time.Now())
		}

		results, err := deps.Orchestrator.RunAwardForPeriod(c.UserContext(), periodKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "award run aborted",
				"cause": err.Error(),
			})
		}
		return c.JSON(results)
	})

	admin.Get("/stats", func(c *fiber.Ctx) error {
		periodKey := c.Query("period", services.PeriodKeyFor(time.Now()))
		actionKind := c.Query("kind", deps.Orchestrator.ActionKind)

		stats, err := deps.AwardLog.PeriodStats(periodKey, actionKind)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute period stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	admin.Post("/snapshot/:period", func(c *fiber.Ctx) error {
		if deps.Snapshot == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "snapshot storage not configured",
			})
		}
		url, err := deps.Snapshot(c.UserContext(), c.Params("period"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "snapshot export failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"url": url})
	})

	// 🔐 User surface — own audit trail, gateway-forwarded identity.
	secured := app.Group("/s/user", middleware.UserContextMiddleware())

	secured.Get("/rewards/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var user models.User
		if err := deps.DB.Where("external_user_id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "DB error fetching user",
				"cause": err.Error(),
			})
		}

		if user.WalletAddress == nil || *user.WalletAddress == "" {
			return c.JSON(fiber.Map{"entries": []models.AwardLog{}})
		}

		entries, err := deps.AwardLog.SubjectHistory(*user.WalletAddress, c.Query("period"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch reward history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"entries": entries})
	})
}
