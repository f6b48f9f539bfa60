package dashboard

import (
	"time"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GET /api/dashboard
func DashboardHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cards, err := Aggregate(database.DB, cfg.Location, time.Now())
		if err != nil {
			logger.FromCtx(c).Error("dashboard hesaplanamadı", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Dashboard verisi alınamadı")
		}
		return c.JSON(cards)
	}
}
