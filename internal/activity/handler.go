package activity

import (
	"errors"
	"time"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const listLimit = 200

type ActivityLogResponse struct {
	ID               uint                  `json:"id"`
	Action           models.ActivityAction `json:"action"`
	User             *uint                 `json:"user"`
	UserUsername     string                `json:"user_username"`
	Machine          *uint                 `json:"machine"`
	MachineShortName string                `json:"machine_short_name"`
	Details          string                `json:"details"`
	CreatedAt        string                `json:"created_at"`
}

// GET /api/admin/activity-logs?action=tool_change&machine_id=1
func ListActivityLogsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ActivityLog{}).
			Preload("User").
			Preload("Machine")

		if action := c.Query("action"); action != "" {
			dbq = dbq.Where("action = ?", action)
		}
		if mid := c.QueryInt("machine_id"); mid > 0 {
			dbq = dbq.Where("machine_id = ?", mid)
		}

		var logs []models.ActivityLog
		if err := dbq.Order("created_at DESC").Order("id DESC").Limit(listLimit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aktivite kayıtları listelenemedi")
		}

		resp := make([]ActivityLogResponse, 0, len(logs))
		for _, l := range logs {
			r := ActivityLogResponse{
				ID:        l.ID,
				Action:    l.Action,
				User:      l.UserID,
				Machine:   l.MachineID,
				Details:   l.Details,
				CreatedAt: l.CreatedAt.In(cfg.Location).Format(time.RFC3339),
			}
			if l.User != nil {
				r.UserUsername = l.User.Username
			}
			if l.Machine != nil {
				r.MachineShortName = l.Machine.ShortName
			}
			resp = append(resp, r)
		}

		return c.JSON(resp)
	}
}

// DELETE /api/admin/activity-logs/:id (yalnızca superuser)
func DeleteActivityLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var row models.ActivityLog
		if err := database.DB.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt okunamadı")
		}

		if err := database.DB.Delete(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
