package models

import "time"

type ActivityAction string

const (
	ActionLogin            ActivityAction = "login"
	ActionToolChange       ActivityAction = "tool_change"
	ActionDailyProduction  ActivityAction = "daily_production"
	ActionWorkSession      ActivityAction = "work_session"
	ActionMaterialEntry    ActivityAction = "material_entry"
	ActionMaterialShipment ActivityAction = "material_shipment"
)

// ActivityLog: sadece ekleme yapılan işlem geçmişi. Güncellenmez, yalnızca superuser silebilir.
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    *uint          `gorm:"index"`
	User      *User          `gorm:"constraint:OnDelete:SET NULL"`
	Action    ActivityAction `gorm:"size:50;index;not null"`
	MachineID *uint          `gorm:"index"`
	Machine   *Machine       `gorm:"constraint:OnDelete:SET NULL"`
	Details   string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"index"`
}
