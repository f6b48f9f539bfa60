package material

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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const detailLimit = 20

// -------------------------
// Request/Response Types
// -------------------------

type MaterialTypeResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

type EntryRequest struct {
	MaterialTypeID uint `json:"material_type_id" validate:"required"`
	BoxesCount     int  `json:"boxes_count" validate:"gt=0"`
	UnitsPerBox    int  `json:"units_per_box" validate:"gt=0"`
}

type ShipmentRequest struct {
	MaterialTypeID uint   `json:"material_type_id" validate:"required"`
	BoxesCount     int    `json:"boxes_count" validate:"gt=0"`
	UnitsPerBox    int    `json:"units_per_box" validate:"gt=0"`
	Note           string `json:"note" validate:"max=200"`
}

type MovementResponse struct {
	ID                uint   `json:"id"`
	MaterialType      uint   `json:"material_type"`
	MaterialTypeName  string `json:"material_type_name"`
	BoxesCount        int    `json:"boxes_count"`
	UnitsPerBox       int    `json:"units_per_box"`
	TotalUnits        int    `json:"total_units"`
	Note              string `json:"note,omitempty"`
	CreatedBy         *uint  `json:"created_by"`
	CreatedByUsername string `json:"created_by_username"`
	CreatedAt         string `json:"created_at"`
}

type MaterialDetailResponse struct {
	MaterialType MaterialTypeResponse `json:"material_type"`
	Stock        StockRow             `json:"stock"`
	Entries      []MovementResponse   `json:"entries"`
	Shipments    []MovementResponse   `json:"shipments"`
}

func typeResponse(t models.MaterialType) MaterialTypeResponse {
	return MaterialTypeResponse{ID: t.ID, Name: t.Name, Code: t.Code, IsActive: t.IsActive}
}

func entryResponse(e models.MaterialEntry, typeName string, loc *time.Location) MovementResponse {
	r := MovementResponse{
		ID:               e.ID,
		MaterialType:     e.MaterialTypeID,
		MaterialTypeName: typeName,
		BoxesCount:       e.BoxesCount,
		UnitsPerBox:      e.UnitsPerBox,
		TotalUnits:       e.TotalUnits(),
		CreatedBy:        e.CreatedByID,
		CreatedAt:        e.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if e.CreatedBy != nil {
		r.CreatedByUsername = e.CreatedBy.Username
	}
	return r
}

func shipmentResponse(s models.MaterialShipment, typeName string, loc *time.Location) MovementResponse {
	r := MovementResponse{
		ID:               s.ID,
		MaterialType:     s.MaterialTypeID,
		MaterialTypeName: typeName,
		BoxesCount:       s.BoxesCount,
		UnitsPerBox:      s.UnitsPerBox,
		TotalUnits:       s.TotalUnits(),
		Note:             s.Note,
		CreatedBy:        s.CreatedByID,
		CreatedAt:        s.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if s.CreatedBy != nil {
		r.CreatedByUsername = s.CreatedBy.Username
	}
	return r
}

func findType(db *gorm.DB, id uint) (*models.MaterialType, error) {
	var t models.MaterialType
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Malzeme tipi bulunamadı")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipi okunamadı")
	}
	return &t, nil
}

func internalErr(c *fiber.Ctx, err error, msg string) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return err
	}
	logger.FromCtx(c).Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// GET /api/materials/types
func ListTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var types []models.MaterialType
		if err := database.DB.Where("is_active = ?", true).Order("name").Find(&types).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme tipleri listelenemedi")
		}

		resp := make([]MaterialTypeResponse, 0, len(types))
		for _, t := range types {
			resp = append(resp, typeResponse(t))
		}
		return c.JSON(resp)
	}
}

// GET /api/materials/stock
func StockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := ActiveStock(database.DB)
		if err != nil {
			return internalErr(c, err, "Stok hesaplanamadı")
		}
		return c.JSON(rows)
	}
}

// GET /api/materials/:id
func DetailHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		t, err := findType(database.DB, id)
		if err != nil {
			return err
		}

		stock, err := Calculate(database.DB, []models.MaterialType{*t})
		if err != nil {
			return internalErr(c, err, "Stok hesaplanamadı")
		}

		var entries []models.MaterialEntry
		if err := database.DB.Preload("CreatedBy").
			Where("material_type_id = ?", t.ID).
			Order("created_at DESC").Order("id DESC").
			Limit(detailLimit).
			Find(&entries).Error; err != nil {
			return internalErr(c, err, "Malzeme girişleri okunamadı")
		}

		var shipments []models.MaterialShipment
		if err := database.DB.Preload("CreatedBy").
			Where("material_type_id = ?", t.ID).
			Order("created_at DESC").Order("id DESC").
			Limit(detailLimit).
			Find(&shipments).Error; err != nil {
			return internalErr(c, err, "Malzeme çıkışları okunamadı")
		}

		resp := MaterialDetailResponse{
			MaterialType: typeResponse(*t),
			Stock:        stock[0],
			Entries:      make([]MovementResponse, 0, len(entries)),
			Shipments:    make([]MovementResponse, 0, len(shipments)),
		}
		for _, e := range entries {
			resp.Entries = append(resp.Entries, entryResponse(e, t.Name, cfg.Location))
		}
		for _, s := range shipments {
			resp.Shipments = append(resp.Shipments, shipmentResponse(s, t.Name, cfg.Location))
		}
		return c.JSON(resp)
	}
}

// POST /api/materials/entry
func CreateEntryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EntryRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		t, err := findType(database.DB, body.MaterialTypeID)
		if err != nil {
			return err
		}

		userID := auth.CurrentUserID(c)
		entry := models.MaterialEntry{
			MaterialTypeID: t.ID,
			BoxesCount:     body.BoxesCount,
			UnitsPerBox:    body.UnitsPerBox,
			CreatedByID:    userID,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
				return err
			}
			return activity.WriteLog(tx, activity.LogOptions{
				UserID:  userID,
				Action:  models.ActionMaterialEntry,
				Details: fmt.Sprintf("material=%s boxes=%d units_per_box=%d", t.Name, entry.BoxesCount, entry.UnitsPerBox),
			})
		})
		if err != nil {
			return internalErr(c, err, "Malzeme girişi kaydedilemedi")
		}

		metrics.MaterialBoxesTotal.WithLabelValues(t.Name, "in").Add(float64(entry.BoxesCount))

		entry.CreatedBy = auth.CurrentUser(c)
		return c.Status(fiber.StatusCreated).JSON(entryResponse(entry, t.Name, cfg.Location))
	}
}

// POST /api/materials/shipment (yalnızca staff/superuser)
func CreateShipmentHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := auth.CurrentUser(c)
		if u == nil || !u.Role.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
		}

		var body ShipmentRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		t, err := findType(database.DB, body.MaterialTypeID)
		if err != nil {
			return err
		}

		shipment := models.MaterialShipment{
			MaterialTypeID: t.ID,
			BoxesCount:     body.BoxesCount,
			UnitsPerBox:    body.UnitsPerBox,
			Note:           strings.TrimSpace(body.Note),
			CreatedByID:    &u.ID,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&shipment).Error; err != nil {
				return err
			}
			return activity.WriteLog(tx, activity.LogOptions{
				UserID:  &u.ID,
				Action:  models.ActionMaterialShipment,
				Details: fmt.Sprintf("material=%s boxes=%d units_per_box=%d", t.Name, shipment.BoxesCount, shipment.UnitsPerBox),
			})
		})
		if err != nil {
			return internalErr(c, err, "Malzeme çıkışı kaydedilemedi")
		}

		metrics.MaterialBoxesTotal.WithLabelValues(t.Name, "out").Add(float64(shipment.BoxesCount))

		shipment.CreatedBy = u
		return c.Status(fiber.StatusCreated).JSON(shipmentResponse(shipment, t.Name, cfg.Location))
	}
}
