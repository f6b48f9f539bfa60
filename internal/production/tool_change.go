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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgNoValidTool = "Geçerli takım seçilmedi."

// -------------------------
// Request/Response Types
// -------------------------

type ToolChangeRequest struct {
	MachineID      uint   `json:"machine_id" validate:"required"`
	ToolTypeIDs    []uint `json:"tool_type_ids" validate:"required,min=1"`
	CurrentCounter *int   `json:"current_counter"`
	Note           string `json:"note"`
}

type ToolChangeItemResponse struct {
	ID           uint   `json:"id"`
	ToolType     uint   `json:"tool_type"`
	ToolTypeName string `json:"tool_type_name"`
	Quantity     int    `json:"quantity"`
	ExtraNote    string `json:"extra_note"`
}

type ToolChangeBatchResponse struct {
	ID                uint                     `json:"id"`
	Machine           uint                     `json:"machine"`
	ChangedBy         *uint                    `json:"changed_by"`
	ChangedByUsername string                   `json:"changed_by_username"`
	Timestamp         string                   `json:"timestamp"`
	CurrentCounter    *int                     `json:"current_counter"`
	Note              string                   `json:"note"`
	Items             []ToolChangeItemResponse `json:"items"`
}

// BatchResponse: batch'i API biçimine çevirir (Items.ToolType ve ChangedBy yüklenmiş olmalı)
func BatchResponse(b models.ToolChangeBatch, loc *time.Location) ToolChangeBatchResponse {
	resp := ToolChangeBatchResponse{
		ID:             b.ID,
		Machine:        b.MachineID,
		ChangedBy:      b.ChangedByID,
		Timestamp:      b.Timestamp.In(loc).Format(time.RFC3339),
		CurrentCounter: b.CurrentCounter,
		Note:           b.Note,
		Items:          make([]ToolChangeItemResponse, 0, len(b.Items)),
	}
	if b.ChangedBy != nil {
		resp.ChangedByUsername = b.ChangedBy.Username
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, ToolChangeItemResponse{
			ID:           it.ID,
			ToolType:     it.ToolTypeID,
			ToolTypeName: it.ToolType.Name,
			Quantity:     it.Quantity,
			ExtraNote:    it.ExtraNote,
		})
	}
	return resp
}

// toolChangeDetails: "tools=A + B counter=123" (sayaç yoksa "-")
func toolChangeDetails(tools []models.ToolType, counter *int) string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	c := "-"
	if counter != nil {
		c = fmt.Sprintf("%d", *counter)
	}
	return fmt.Sprintf("tools=%s counter=%s", strings.Join(names, " + "), c)
}

// findMachine: tezgah yoksa 404
func findMachine(db *gorm.DB, id uint) (*models.Machine, error) {
	var m models.Machine
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Tezgah bulunamadı")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tezgah okunamadı")
	}
	return &m, nil
}

// RecordToolChange: batch, kalemler ve aktivite kaydını tek transaction içinde yazar.
// Seçilen takımlardan bu tezgaha ait olmayanlar sessizce atlanır; hiçbiri kalmazsa 400.
func RecordToolChange(db *gorm.DB, userID *uint, req ToolChangeRequest) (*models.ToolChangeBatch, error) {
	machine, err := findMachine(db, req.MachineID)
	if err != nil {
		return nil, err
	}

	var tools []models.ToolType
	if err := db.
		Where("id IN ? AND machine_id = ?", req.ToolTypeIDs, machine.ID).
		Order("id").
		Find(&tools).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Takım tipleri okunamadı")
	}
	if len(tools) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, msgNoValidTool)
	}

	batch := models.ToolChangeBatch{
		MachineID:      machine.ID,
		ChangedByID:    userID,
		CurrentCounter: req.CurrentCounter,
		Note:           strings.TrimSpace(req.Note),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&batch).Error; err != nil {
			return err
		}

		items := make([]models.ToolChangeBatchItem, 0, len(tools))
		for _, t := range tools {
			items = append(items, models.ToolChangeBatchItem{
				BatchID:    batch.ID,
				ToolTypeID: t.ID,
				Quantity:   1,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}

		return activity.WriteLog(tx, activity.LogOptions{
			UserID:    userID,
			Action:    models.ActionToolChange,
			MachineID: &machine.ID,
			Details:   toolChangeDetails(tools, req.CurrentCounter),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ToolChangesTotal.WithLabelValues(machine.DisplayName()).Inc()

	var saved models.ToolChangeBatch
	if err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Items.ToolType").
		Preload("ChangedBy").
		First(&saved, "id = ?", batch.ID).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// POST /api/tool-change
func ToolChangeHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ToolChangeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		batch, err := RecordToolChange(database.DB, auth.CurrentUserID(c), body)
		if err != nil {
			var ferr *fiber.Error
			if !errors.As(err, &ferr) {
				logger.FromCtx(c).Error("takım değişimi kaydedilemedi", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Takım değişimi kaydedilemedi")
			}
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(BatchResponse(*batch, cfg.Location))
	}
}
