package models

import "time"

// ToolChangeBatch: tek seferde yapılan takım değişimi (bir veya daha fazla takım)
type ToolChangeBatch struct {
	ID             uint      `gorm:"primaryKey"`
	MachineID      uint      `gorm:"index;not null"`
	Machine        Machine   `gorm:"constraint:OnDelete:CASCADE"`
	ChangedByID    *uint     `gorm:"index"`
	ChangedBy      *User     `gorm:"constraint:OnDelete:SET NULL"`
	Timestamp      time.Time `gorm:"column:changed_at;index;not null;autoCreateTime;<-:create"` // oluşturulurken set edilir, sonra değişmez
	CurrentCounter *int
	Note           string `gorm:"type:text"`

	Items []ToolChangeBatchItem `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

type ToolChangeBatchItem struct {
	ID         uint     `gorm:"primaryKey"`
	BatchID    uint     `gorm:"index;not null"`
	ToolTypeID uint     `gorm:"index;not null"`
	ToolType   ToolType `gorm:"constraint:OnDelete:CASCADE"`
	Quantity   int      `gorm:"not null;default:1"`
	ExtraNote  string   `gorm:"size:200"`
}
