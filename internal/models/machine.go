package models

import "time"

// Machine: hattaki tezgah. OrderInLine ekranda ve listelerde sıralamayı belirler (unique değil).
type Machine struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	ShortName   string `gorm:"size:50;not null"`
	OrderInLine int    `gorm:"not null;index"`
	Location    string `gorm:"size:100"`
	IsActive    bool   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ToolTypes []ToolType `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
}

// DisplayName: kısa ad varsa onu, yoksa tam adı döndürür
func (m Machine) DisplayName() string {
	if m.ShortName != "" {
		return m.ShortName
	}
	return m.Name
}

// ToolType: bir tezgaha ait takım tipi
type ToolType struct {
	ID        uint `gorm:"primaryKey"`
	MachineID uint `gorm:"index;not null"`
	Machine   Machine
	Name      string `gorm:"size:100;not null"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
