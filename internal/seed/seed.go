package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"uretim-backend/internal/auth"
	"uretim-backend/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed machines.yaml
var machinesYAML []byte

type MachineSpec struct {
	Name        string   `yaml:"name"`
	ShortName   string   `yaml:"short_name"`
	OrderInLine int      `yaml:"order_in_line"`
	Tools       []string `yaml:"tools"`
}

type Catalogue struct {
	Machines []MachineSpec `yaml:"machines"`
}

type Result struct {
	MachinesUpserted int
	ToolTypesCreated int
}

// DefaultCatalogue: gömülü makine/takım listesi
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(machinesYAML)
}

func ParseCatalogue(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("seed katalogu okunamadı: %w", err)
	}
	for i, m := range cat.Machines {
		if m.Name == "" {
			return nil, fmt.Errorf("seed katalogu: %d. makinenin adı boş", i+1)
		}
	}
	return &cat, nil
}

// Run: makineleri ada göre ekler/günceller (aktif yapar), eksik takım tiplerini ekler.
// Tekrar çalıştırıldığında kopya kayıt oluşturmaz.
func Run(db *gorm.DB, cat *Catalogue) (Result, error) {
	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, ms := range cat.Machines {
			var m models.Machine
			err := tx.Where("name = ?", ms.Name).First(&m).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				m = models.Machine{
					Name:        ms.Name,
					ShortName:   ms.ShortName,
					OrderInLine: ms.OrderInLine,
					IsActive:    true,
				}
				if err := tx.Create(&m).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&m).Updates(map[string]interface{}{
					"short_name":    ms.ShortName,
					"order_in_line": ms.OrderInLine,
					"is_active":     true,
				}).Error; err != nil {
					return err
				}
			}
			res.MachinesUpserted++

			var existing []string
			if err := tx.Model(&models.ToolType{}).Where("machine_id = ?", m.ID).Pluck("name", &existing).Error; err != nil {
				return err
			}
			have := make(map[string]bool, len(existing))
			for _, n := range existing {
				have[n] = true
			}

			for _, name := range ms.Tools {
				if have[name] {
					continue
				}
				tt := models.ToolType{MachineID: m.ID, Name: name, IsActive: true}
				if err := tx.Omit("Machine").Create(&tt).Error; err != nil {
					return err
				}
				have[name] = true
				res.ToolTypesCreated++
			}
		}
		return nil
	})

	return res, err
}

// EnsureSuperuser: kullanıcı yoksa superuser olarak oluşturur. Oluşturduysa true döner.
func EnsureSuperuser(db *gorm.DB, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	u := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleSuperuser,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		return false, err
	}
	return true, nil
}
