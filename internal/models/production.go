package models

import (
	"time"

	"gorm.io/datatypes"
)

// DailyProduction: günlük üretim adedi. Aynı tezgah ve gün için birden fazla kayıt olabilir
// (her gönderim yeni satır açar, güncelleme yapılmaz).
type DailyProduction struct {
	ID           uint           `gorm:"primaryKey"`
	MachineID    uint           `gorm:"index:idx_daily_machine_date;not null"`
	Machine      Machine        `gorm:"constraint:OnDelete:CASCADE"`
	Date         datatypes.Date `gorm:"index:idx_daily_machine_date;not null"`
	TotalCount   int            `gorm:"not null"`
	RecordedByID *uint          `gorm:"index"`
	RecordedBy   *User          `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time      `gorm:"index"`
}

// WorkSession: bir çalışanın tezgah başındaki zaman aralığı
type WorkSession struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"index;not null"`
	User          User      `gorm:"constraint:OnDelete:CASCADE"`
	MachineID     uint      `gorm:"index;not null"`
	Machine       Machine   `gorm:"constraint:OnDelete:CASCADE"`
	StartTime     time.Time `gorm:"not null"`
	EndTime       time.Time `gorm:"index;not null"`
	ProducedCount *int
	Note          string `gorm:"type:text"`
}
