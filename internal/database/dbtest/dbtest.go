// Package dbtest yalnızca _test.go dosyalarından içe aktarılır.
package dbtest

import (
	"testing"

	"uretim-backend/internal/database"

	"gorm.io/gorm"
)

// Use: bellek içi SQLite açar, şemayı kurar ve test boyunca database.DB globalini bununla değiştirir.
func Use(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect("sqlite", ":memory:", 1)
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("test veritabanı migrate edilemedi: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
