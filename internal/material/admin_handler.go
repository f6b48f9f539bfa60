package material

import (
	"strings"

	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTypeRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Code     string `json:"code" validate:"max=50"`
	IsActive *bool  `json:"is_active"`
}

type UpdateTypeRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code     *string `json:"code" validate:"omitempty,max=50"`
	IsActive *bool   `json:"is_active"`
}

func nameTaken(name string, exceptID uint) (bool, error) {
	var n int64
	err := database.DB.Model(&models.MaterialType{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&n).Error
	return n > 0, err
}

// POST /api/admin/material-types
func CreateTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		name := strings.TrimSpace(body.Name)
		taken, err := nameTaken(name, 0)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi kontrol edilemedi")
		}
		if taken {
			return httpx.FieldError("name", "Bu isimde malzeme tipi zaten var.")
		}

		t := models.MaterialType{
			Name:     name,
			Code:     strings.TrimSpace(body.Code),
			IsActive: true,
		}
		if body.IsActive != nil {
			t.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(typeResponse(t))
	}
}

// PUT /api/admin/material-types/:id
func UpdateTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		t, err := findType(database.DB, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			taken, err := nameTaken(name, t.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi kontrol edilemedi")
			}
			if taken {
				return httpx.FieldError("name", "Bu isimde malzeme tipi zaten var.")
			}
			updates["name"] = name
		}
		if body.Code != nil {
			updates["code"] = strings.TrimSpace(*body.Code)
		}
		if body.IsActive != nil {
			updates["is_active"] = *body.IsActive
		}

		if len(updates) > 0 {
			if err := database.DB.Model(t).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi güncellenemedi")
			}
		}

		if err := database.DB.First(t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi okunamadı")
		}
		return c.JSON(typeResponse(*t))
	}
}
