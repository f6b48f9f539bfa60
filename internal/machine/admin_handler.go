package machine

import (
	"errors"
	"strings"

	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateMachineRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	ShortName   string `json:"short_name" validate:"required,max=50"`
	OrderInLine int    `json:"order_in_line"`
	Location    string `json:"location" validate:"max=100"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateMachineRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	ShortName   *string `json:"short_name" validate:"omitempty,min=1,max=50"`
	OrderInLine *int    `json:"order_in_line"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
}

type CreateToolTypeRequest struct {
	MachineID uint   `json:"machine_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=100"`
	IsActive  *bool  `json:"is_active"`
}

func loadMachine(id uint) (*models.Machine, error) {
	var m models.Machine
	if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Tezgah bulunamadı")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tezgah okunamadı")
	}
	return &m, nil
}

// POST /api/admin/machines
func CreateMachineHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMachineRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		m := models.Machine{
			Name:        strings.TrimSpace(body.Name),
			ShortName:   strings.TrimSpace(body.ShortName),
			OrderInLine: body.OrderInLine,
			Location:    strings.TrimSpace(body.Location),
			IsActive:    true,
		}
		if body.IsActive != nil {
			m.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tezgah oluşturulamadı")
		}
		lc.Flush()

		return c.Status(fiber.StatusCreated).JSON(machineResponse(m))
	}
}

// POST|PUT /api/admin/machines/:id (kısmi güncelleme)
func UpdateMachineHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateMachineRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		m, err := loadMachine(id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if body.Name != nil {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.ShortName != nil {
			updates["short_name"] = strings.TrimSpace(*body.ShortName)
		}
		if body.OrderInLine != nil {
			updates["order_in_line"] = *body.OrderInLine
		}
		if body.Location != nil {
			updates["location"] = strings.TrimSpace(*body.Location)
		}
		if body.IsActive != nil {
			updates["is_active"] = *body.IsActive
		}

		if len(updates) > 0 {
			if err := database.DB.Model(m).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tezgah güncellenemedi")
			}
			lc.Flush()
		}

		if err := database.DB.Preload("ToolTypes", allToolTypes).
			First(m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tezgah okunamadı")
		}
		return c.JSON(machineResponse(*m))
	}
}

// DELETE /api/admin/machines/:id/delete
// Takım tipleri, değişimler, üretim kayıtları ve oturumlar cascade ile silinir.
func DeleteMachineHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		m, err := loadMachine(id)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tezgah silinemedi")
		}
		lc.Flush()

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/tooltypes
func CreateToolTypeHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateToolTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		m, err := loadMachine(body.MachineID)
		if err != nil {
			return err
		}

		tt := models.ToolType{
			MachineID: m.ID,
			Name:      strings.TrimSpace(body.Name),
			IsActive:  true,
		}
		if body.IsActive != nil {
			tt.IsActive = *body.IsActive
		}

		if err := database.DB.Omit("Machine").Create(&tt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım tipi oluşturulamadı")
		}
		lc.Flush()

		return c.Status(fiber.StatusCreated).JSON(toolTypeResponse(tt))
	}
}

// DELETE /api/admin/tooltypes/:id/delete
func DeleteToolTypeHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var tt models.ToolType
		if err := database.DB.First(&tt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Takım tipi bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Takım tipi okunamadı")
		}

		if err := database.DB.Delete(&tt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım tipi silinemedi")
		}
		lc.Flush()

		return c.SendStatus(fiber.StatusNoContent)
	}
}
