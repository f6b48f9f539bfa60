package machine

import (
	"errors"
	"time"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/models"
	"uretim-backend/internal/production"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	detailBatchLimit   = 10
	detailDailyLimit   = 14
	detailSessionLimit = 10
)

// -------------------------
// Request/Response Types
// -------------------------

type ToolTypeResponse struct {
	ID       uint   `json:"id"`
	Machine  uint   `json:"machine"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type MachineInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	OrderInLine int    `json:"order_in_line"`
	Location    string `json:"location"`
	IsActive    bool   `json:"is_active"`
}

type MachineResponse struct {
	MachineInfo
	ToolTypes []ToolTypeResponse `json:"tool_types"`
}

type MachineDetailResponse struct {
	Machine        MachineInfo                          `json:"machine"`
	ToolTypes      []ToolTypeResponse                   `json:"tool_types"`
	LastBatches    []production.ToolChangeBatchResponse `json:"last_batches"`
	TodayTotal     *int                                 `json:"today_total"`
	RecentDaily    []production.DailyProductionResponse `json:"recent_daily"`
	RecentSessions []production.WorkSessionResponse     `json:"recent_sessions"`
}

func toolTypeResponse(t models.ToolType) ToolTypeResponse {
	return ToolTypeResponse{ID: t.ID, Machine: t.MachineID, Name: t.Name, IsActive: t.IsActive}
}

func machineInfo(m models.Machine) MachineInfo {
	return MachineInfo{
		ID:          m.ID,
		Name:        m.Name,
		ShortName:   m.ShortName,
		OrderInLine: m.OrderInLine,
		Location:    m.Location,
		IsActive:    m.IsActive,
	}
}

func toolTypeResponses(tools []models.ToolType) []ToolTypeResponse {
	out := make([]ToolTypeResponse, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolTypeResponse(t))
	}
	return out
}

func machineResponse(m models.Machine) MachineResponse {
	return MachineResponse{MachineInfo: machineInfo(m), ToolTypes: toolTypeResponses(m.ToolTypes)}
}

func allToolTypes(tx *gorm.DB) *gorm.DB {
	return tx.Order("id")
}

func activeToolTypes(tx *gorm.DB) *gorm.DB {
	return tx.Where("is_active = ?", true).Order("id")
}

// ActiveMachines: aktif tezgahlar hat sırasına göre; takım tipleri is_active alanıyla birlikte hepsi döner,
// istemci pasifleri kendisi süzer
func ActiveMachines(db *gorm.DB) ([]MachineResponse, error) {
	var machines []models.Machine
	if err := db.
		Preload("ToolTypes", allToolTypes).
		Where("is_active = ?", true).
		Order("order_in_line").Order("id").
		Find(&machines).Error; err != nil {
		return nil, err
	}

	resp := make([]MachineResponse, 0, len(machines))
	for _, m := range machines {
		resp = append(resp, machineResponse(m))
	}
	return resp, nil
}

// GET /api/machines
func ListMachinesHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if list, ok := lc.Get(); ok {
			return c.JSON(list)
		}

		list, err := ActiveMachines(database.DB)
		if err != nil {
			logger.FromCtx(c).Error("tezgahlar listelenemedi", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Tezgahlar listelenemedi")
		}
		lc.Set(list)
		return c.JSON(list)
	}
}

// GET /api/machines/:id
func MachineDetailHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		detail, err := Detail(database.DB, id, cfg.Location, time.Now())
		if err != nil {
			var ferr *fiber.Error
			if !errors.As(err, &ferr) {
				logger.FromCtx(c).Error("tezgah detayı alınamadı", zap.Error(err), zap.Uint("machine_id", id))
				return fiber.NewError(fiber.StatusInternalServerError, "Tezgah detayı alınamadı")
			}
			return err
		}
		return c.JSON(detail)
	}
}

// Detail: tezgah, aktif takımları, son değişimler, bugünkü toplam, son günlük kayıtlar ve son oturumlar
func Detail(db *gorm.DB, id uint, loc *time.Location, now time.Time) (*MachineDetailResponse, error) {
	var m models.Machine
	if err := db.Preload("ToolTypes", activeToolTypes).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Tezgah bulunamadı")
		}
		return nil, err
	}

	var batches []models.ToolChangeBatch
	if err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Items.ToolType").
		Preload("ChangedBy").
		Where("machine_id = ?", m.ID).
		Order("changed_at DESC").Order("id DESC").
		Limit(detailBatchLimit).
		Find(&batches).Error; err != nil {
		return nil, err
	}

	todayTotal, err := production.TotalForDate(db, m.ID, production.LocalDate(now, loc))
	if err != nil {
		return nil, err
	}

	var daily []models.DailyProduction
	if err := db.
		Preload("RecordedBy").
		Where("machine_id = ?", m.ID).
		Order("date DESC").Order("created_at DESC").Order("id DESC").
		Limit(detailDailyLimit).
		Find(&daily).Error; err != nil {
		return nil, err
	}

	var sessions []models.WorkSession
	if err := db.
		Preload("User").
		Where("machine_id = ?", m.ID).
		Order("end_time DESC").Order("id DESC").
		Limit(detailSessionLimit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	resp := &MachineDetailResponse{
		Machine:        machineInfo(m),
		ToolTypes:      toolTypeResponses(m.ToolTypes),
		LastBatches:    make([]production.ToolChangeBatchResponse, 0, len(batches)),
		TodayTotal:     todayTotal,
		RecentDaily:    make([]production.DailyProductionResponse, 0, len(daily)),
		RecentSessions: make([]production.WorkSessionResponse, 0, len(sessions)),
	}
	for _, b := range batches {
		resp.LastBatches = append(resp.LastBatches, production.BatchResponse(b, loc))
	}
	for _, d := range daily {
		resp.RecentDaily = append(resp.RecentDaily, production.DailyResponse(d, loc))
	}
	for _, s := range sessions {
		s.Machine = m
		resp.RecentSessions = append(resp.RecentSessions, production.SessionResponse(s, loc))
	}
	return resp, nil
}
