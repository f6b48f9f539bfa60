package models

import "time"

// MaterialType: hazır paketlenmiş malzeme tipi
type MaterialType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	Code      string `gorm:"size:50"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Entries   []MaterialEntry    `gorm:"foreignKey:MaterialTypeID;constraint:OnDelete:CASCADE"`
	Shipments []MaterialShipment `gorm:"foreignKey:MaterialTypeID;constraint:OnDelete:CASCADE"`
}

// MaterialEntry: depoya giren kutular
type MaterialEntry struct {
	ID             uint `gorm:"primaryKey"`
	MaterialTypeID uint `gorm:"index;not null"`
	MaterialType   MaterialType
	BoxesCount     int   `gorm:"not null"`
	UnitsPerBox    int   `gorm:"not null;default:1"` // zorunlu, toplam adet = kutu * kutu başı adet
	CreatedByID    *uint `gorm:"index"`
	CreatedBy      *User `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time
}

func (e MaterialEntry) TotalUnits() int { return e.BoxesCount * e.UnitsPerBox }

// MaterialShipment: depodan çıkan kutular
type MaterialShipment struct {
	ID             uint `gorm:"primaryKey"`
	MaterialTypeID uint `gorm:"index;not null"`
	MaterialType   MaterialType
	BoxesCount     int    `gorm:"not null"`
	UnitsPerBox    int    `gorm:"not null;default:1"`
	Note           string `gorm:"size:200"`
	CreatedByID    *uint  `gorm:"index"`
	CreatedBy      *User  `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time
}

func (s MaterialShipment) TotalUnits() int { return s.BoxesCount * s.UnitsPerBox }
