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

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 500
)

type WorkSessionRequest struct {
	UserID        uint      `json:"user_id" validate:"required"`
	MachineID     uint      `json:"machine_id" validate:"required"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	ProducedCount *int      `json:"produced_count" validate:"omitempty,gte=0"`
	Note          string    `json:"note"`
}

type WorkSessionResponse struct {
	ID               uint   `json:"id"`
	User             uint   `json:"user"`
	UserUsername     string `json:"user_username"`
	Machine          uint   `json:"machine"`
	MachineShortName string `json:"machine_short_name"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	ProducedCount    *int   `json:"produced_count"`
	Note             string `json:"note"`
}

// SessionResponse: User ve Machine yüklenmiş olmalı
func SessionResponse(s models.WorkSession, loc *time.Location) WorkSessionResponse {
	return WorkSessionResponse{
		ID:               s.ID,
		User:             s.UserID,
		UserUsername:     s.User.Username,
		Machine:          s.MachineID,
		MachineShortName: s.Machine.ShortName,
		StartTime:        s.StartTime.In(loc).Format(time.RFC3339),
		EndTime:          s.EndTime.In(loc).Format(time.RFC3339),
		ProducedCount:    s.ProducedCount,
		Note:             s.Note,
	}
}

func RecordWorkSession(db *gorm.DB, actorID *uint, req WorkSessionRequest) (*models.WorkSession, error) {
	if req.EndTime.Before(req.StartTime) {
		return nil, httpx.FieldError("end_time", "Bitiş zamanı başlangıçtan önce olamaz.")
	}

	var user models.User
	if err := db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
	}
	machine, err := findMachine(db, req.MachineID)
	if err != nil {
		return nil, err
	}

	session := models.WorkSession{
		UserID:        user.ID,
		MachineID:     machine.ID,
		StartTime:     req.StartTime.UTC(),
		EndTime:       req.EndTime.UTC(),
		ProducedCount: req.ProducedCount,
		Note:          strings.TrimSpace(req.Note),
	}

	// İşlemi yapan giriş yapmış kullanıcıdır; giriş yoksa oturumun sahibi yazılır
	logUser := actorID
	if logUser == nil {
		logUser = &user.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
			return err
		}
		produced := "-"
		if req.ProducedCount != nil {
			produced = fmt.Sprintf("%d", *req.ProducedCount)
		}
		return activity.WriteLog(tx, activity.LogOptions{
			UserID:    logUser,
			Action:    models.ActionWorkSession,
			MachineID: &machine.ID,
			Details:   fmt.Sprintf("user=%s produced=%s", user.Username, produced),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkSessionsTotal.Inc()

	session.User = user
	session.Machine = *machine
	return &session, nil
}

// POST /api/work-session
func CreateWorkSessionHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WorkSessionRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		session, err := RecordWorkSession(database.DB, auth.CurrentUserID(c), body)
		if err != nil {
			var ferr *fiber.Error
			var verr *httpx.ValidationError
			if !errors.As(err, &ferr) && !errors.As(err, &verr) {
				logger.FromCtx(c).Error("çalışma oturumu kaydedilemedi", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Çalışma oturumu kaydedilemedi")
			}
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(SessionResponse(*session, cfg.Location))
	}
}

// GET /api/work-sessions?machine_id=1&user_id=2&limit=50
func ListWorkSessionsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", defaultSessionLimit)
		if limit <= 0 || limit > maxSessionLimit {
			limit = defaultSessionLimit
		}

		dbq := database.DB.Model(&models.WorkSession{}).
			Preload("User").
			Preload("Machine")

		if mid := c.QueryInt("machine_id"); mid > 0 {
			dbq = dbq.Where("machine_id = ?", mid)
		}
		if uid := c.QueryInt("user_id"); uid > 0 {
			dbq = dbq.Where("user_id = ?", uid)
		}

		var sessions []models.WorkSession
		if err := dbq.Order("end_time DESC").Order("id DESC").Limit(limit).Find(&sessions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışma oturumları listelenemedi")
		}

		resp := make([]WorkSessionResponse, 0, len(sessions))
		for _, s := range sessions {
			resp = append(resp, SessionResponse(s, cfg.Location))
		}
		return c.JSON(resp)
	}
}
