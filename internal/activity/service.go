package activity

import (
	"fmt"

	"uretim-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID    *uint
	Action    models.ActivityAction
	MachineID *uint
	Details   string
}

// WriteLog: işlem geçmişine yeni satır ekler. Çağıranın transaction'ı (tx) verilmelidir ki
// asıl kayıt ile log birlikte yazılsın ya da hiç yazılmasın.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	row := models.ActivityLog{
		UserID:    opts.UserID,
		Action:    opts.Action,
		MachineID: opts.MachineID,
		Details:   opts.Details,
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("aktivite kaydı yazılamadı: %w", err)
	}
	return nil
}
