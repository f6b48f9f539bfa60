package database

import (
	"fmt"
	"log"
	"strings"

	"uretim-backend/internal/config"
	"uretim-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = Connect(cfg.DBDriver, cfg.DatabaseDSN, cfg.DBMaxOpen)
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Connect: sürücüye göre GORM bağlantısı açar
func Connect(driver, dsn string, maxOpen int) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite":
		// Cascade silmeler için foreign key kontrolü açık olmalı
		if !strings.Contains(dsn, "foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
		dialector = sqlite.Open(dsn)
		// Tek bağlantı: bellek içi veritabanı her bağlantıda ayrı olur
		maxOpen = 1
	case "mysql", "mariadb":
		dialector = mysql.Open(dsn)
	case "sqlserver", "mssql":
		dialector = sqlserver.Open(dsn)
	default:
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB alınamadı: %w", err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Machine{},
		&models.ToolType{},
		&models.ToolChangeBatch{},
		&models.ToolChangeBatchItem{},
		&models.DailyProduction{},
		&models.WorkSession{},
		&models.ActivityLog{},
		&models.MaterialType{},
		&models.MaterialEntry{},
		&models.MaterialShipment{},
	)
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("veritabanı başlatılmadı")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
