package main

import (
	"log"
	"os"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/seed"

	"go.uber.org/zap"
)

// Tezgahları ve takım tiplerini ekler; SEED_ADMIN_USERNAME/SEED_ADMIN_PASSWORD varsa superuser açar.
func main() {
	cfg := config.Load()

	zlog, err := logger.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Logger başlatılamadı: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	database.Init(cfg)

	cat, err := seed.DefaultCatalogue()
	if err != nil {
		zlog.Fatal("Seed katalogu okunamadı", zap.Error(err))
	}

	res, err := seed.Run(database.DB, cat)
	if err != nil {
		zlog.Fatal("Seed başarısız", zap.Error(err))
	}
	zlog.Info("Seed tamamlandı",
		zap.Int("machines_upserted", res.MachinesUpserted),
		zap.Int("tooltypes_created", res.ToolTypesCreated),
	)

	username := os.Getenv("SEED_ADMIN_USERNAME")
	created, err := seed.EnsureSuperuser(database.DB, username, os.Getenv("SEED_ADMIN_PASSWORD"))
	if err != nil {
		zlog.Fatal("Superuser oluşturulamadı", zap.Error(err))
	}
	switch {
	case created:
		zlog.Info("Superuser oluşturuldu", zap.String("username", username))
	case username != "":
		zlog.Warn("Kullanıcı zaten var, superuser oluşturulmadı", zap.String("username", username))
	}
}
