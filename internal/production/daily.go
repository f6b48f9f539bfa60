package production

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"uretim-backend/internal/activity"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/metrics"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyProductionRequest struct {
	MachineID  uint   `json:"machine_id" validate:"required"`
	Date       string `json:"date"` // "2026-10-17", boşsa yerel bugün
	TotalCount *int   `json:"total_count" validate:"required,gte=0"`
}

type DailyProductionResponse struct {
	ID                 uint   `json:"id"`
	Machine            uint   `json:"machine"`
	Date               string `json:"date"`
	TotalCount         int    `json:"total_count"`
	RecordedBy         *uint  `json:"recorded_by"`
	RecordedByUsername string `json:"recorded_by_username"`
	CreatedAt          string `json:"created_at"`
}

type DailyProductionListResponse struct {
	Machine    uint                      `json:"machine"`
	Date       string                    `json:"date"`
	TotalCount *int                      `json:"total_count"`
	Records    []DailyProductionResponse `json:"records"`
}

func DailyResponse(d models.DailyProduction, loc *time.Location) DailyProductionResponse {
	resp := DailyProductionResponse{
		ID:         d.ID,
		Machine:    d.MachineID,
		Date:       time.Time(d.Date).Format(DateLayout),
		TotalCount: d.TotalCount,
		RecordedBy: d.RecordedByID,
		CreatedAt:  d.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if d.RecordedBy != nil {
		resp.RecordedByUsername = d.RecordedBy.Username
	}
	return resp
}

// resolveDay: "YYYY-MM-DD" ya da boşsa yerel bugün
func resolveDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LocalDate(time.Now(), loc), nil
	}
	day, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, httpx.FieldError("date", "Tarih YYYY-MM-DD biçiminde olmalı.")
	}
	return day, nil
}

// RecordDailyProduction: her gönderim yeni satır açar (mevcut satır güncellenmez)
func RecordDailyProduction(db *gorm.DB, userID *uint, machineID uint, day time.Time, total int) (*models.DailyProduction, error) {
	machine, err := findMachine(db, machineID)
	if err != nil {
		return nil, err
	}

	row := models.DailyProduction{
		MachineID:    machine.ID,
		Date:         datatypes.Date(day),
		TotalCount:   total,
		RecordedByID: userID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		return activity.WriteLog(tx, activity.LogOptions{
			UserID:    userID,
			Action:    models.ActionDailyProduction,
			MachineID: &machine.ID,
			Details:   fmt.Sprintf("date=%s total=%d", day.Format(DateLayout), total),
		})
	})
	if err != nil {
		return nil, err
	}

	label := machine.DisplayName()
	metrics.ProductionRecordsTotal.WithLabelValues(label).Inc()
	metrics.ProducedUnitsTotal.WithLabelValues(label).Add(float64(total))

	if err := db.Preload("RecordedBy").First(&row, "id = ?", row.ID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// POST /api/daily-production
func CreateDailyProductionHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DailyProductionRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		day, err := resolveDay(body.Date, cfg.Location)
		if err != nil {
			return err
		}

		row, err := RecordDailyProduction(database.DB, auth.CurrentUserID(c), body.MachineID, day, *body.TotalCount)
		if err != nil {
			var ferr *fiber.Error
			if !errors.As(err, &ferr) {
				logger.FromCtx(c).Error("günlük üretim kaydedilemedi", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Günlük üretim kaydedilemedi")
			}
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(DailyResponse(*row, cfg.Location))
	}
}

// GET /api/daily-production?machine_id=1&date=2026-10-17
func ListDailyProductionHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		machineID := c.QueryInt("machine_id")
		if machineID <= 0 {
			return httpx.FieldError("machine_id", "Bu alan zorunlu.")
		}

		day, err := resolveDay(c.Query("date"), cfg.Location)
		if err != nil {
			return err
		}

		if _, err := findMachine(database.DB, uint(machineID)); err != nil {
			return err
		}

		var rows []models.DailyProduction
		if err := database.DB.
			Preload("RecordedBy").
			Where("machine_id = ? AND date = ?", machineID, datatypes.Date(day)).
			Order("created_at DESC").Order("id DESC").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları listelenemedi")
		}

		resp := DailyProductionListResponse{
			Machine: uint(machineID),
			Date:    day.Format(DateLayout),
			Records: make([]DailyProductionResponse, 0, len(rows)),
		}
		if len(rows) > 0 {
			total := rows[0].TotalCount
			resp.TotalCount = &total
		}
		for _, r := range rows {
			resp.Records = append(resp.Records, DailyResponse(r, cfg.Location))
		}
		return c.JSON(resp)
	}
}
