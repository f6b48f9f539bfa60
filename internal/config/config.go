package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=uretim port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DBDriver    string // postgres | sqlite | mysql | sqlserver
	DatabaseDSN string
	DBMaxOpen   int
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string

	SessionCookie string
	CookieSecure  bool

	// Yerel takvim günü ("bugün") ve HH:MM gösterimi bu saat dilimine göre hesaplanır
	TimeZone string
	Location *time.Location

	LogLevel    string
	Environment string

	LoginRatePerSec float64
	LoginRateBurst  int
	MachineCacheTTL time.Duration

	// Eski yönetim paneli başlıkları; global değil, buradan geçirilir
	SiteTitle  string
	SiteHeader string
}

// Load: .env dosyası (varsa) ve ortam değişkenlerinden ayarları okur, hata varsa süreci durdurur.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env okunamadı: %v", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}
	return cfg
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		DBMaxOpen:       getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		SessionCookie:   getEnv("SESSION_COOKIE", "uretim_session"),
		CookieSecure:    getEnvAsBool("COOKIE_SECURE", false),
		TimeZone:        getEnv("APP_TIMEZONE", "Europe/Istanbul"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("APP_ENV", "development"),
		LoginRatePerSec: getEnvAsFloat("LOGIN_RATE_PER_SEC", 1),
		LoginRateBurst:  getEnvAsInt("LOGIN_RATE_BURST", 5),
		MachineCacheTTL: time.Duration(getEnvAsInt("MACHINE_CACHE_SECONDS", 30)) * time.Second,
		SiteTitle:       getEnv("SITE_TITLE", "Üretim Takip"),
		SiteHeader:      getEnv("SITE_HEADER", "Üretim Takip Yönetimi"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE geçersiz (%s): %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvAsFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvAsBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
