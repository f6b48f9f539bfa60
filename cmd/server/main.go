package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Logger başlatılamadı: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	database.Init(cfg)

	app := server.NewApp(cfg, zlog)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		zlog.Info("Sunucu kapatılıyor")
		_ = app.Shutdown()
	}()

	zlog.Info("Server çalışıyor",
		zap.String("port", cfg.HTTPPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("timezone", cfg.TimeZone),
	)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zlog.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}
