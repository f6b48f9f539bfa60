package models

import "time"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleStaff     UserRole = "staff"
	RoleSuperuser UserRole = "superuser"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleSuperuser:
		return true
	}
	return false
}

// IsAdmin: yönetim ekranlarına erişebilen roller (staff veya superuser)
func (r UserRole) IsAdmin() bool {
	return r == RoleStaff || r == RoleSuperuser
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string   `gorm:"size:150"`
	LastName     string   `gorm:"size:150"`
	Email        string   `gorm:"size:254"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;default:user"`
	IsActive     bool     `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
