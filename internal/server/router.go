package server

import (
	"strings"
	"sync"

	"uretim-backend/internal/activity"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/config"
	"uretim-backend/internal/dashboard"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/machine"
	"uretim-backend/internal/material"
	"uretim-backend/internal/production"
	"uretim-backend/internal/users"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	promOnce sync.Once
	httpProm *fiberprometheus.FiberPrometheus
)

// HTTP metrikleri varsayılan registry'ye bir kez kaydedilir; aynı süreçte birden çok app kurulabilir
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		httpProm = fiberprometheus.New("uretim-backend")
	})
	return httpProm
}

// NewApp: tüm middleware ve route'ları kurar. Veritabanı database.DB üzerinden okunur.
func NewApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.SiteTitle,
		ErrorHandler: httpx.ErrorHandler(log),
	})

	app.Use(recover.New())

	// CORS origins'i virgülle ayrılmış string'den çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	origins := strings.Join(corsOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + logger.HeaderRequestID,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "" && origins != "*", // joker origin ile çerez gönderilemez
	}))

	app.Use(logger.Middleware())

	prom := httpMetrics()
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	machineCache := machine.NewListCache(cfg.MachineCacheTTL)
	loginLimiter := auth.NewIPRateLimiter(rate.Limit(cfg.LoginRatePerSec), cfg.LoginRateBurst)

	api := app.Group("/api")
	api.Use(auth.Authenticate(cfg))

	api.Get("/health", healthHandler(cfg))

	// Kimlik
	api.Post("/login", auth.RateLimit(loginLimiter), auth.LoginHandler(cfg))
	api.Post("/logout", auth.LogoutHandler(cfg))
	api.Get("/whoami", auth.WhoAmIHandler())

	// Üretim ekranları (token varsa kullanıcı kayda yazılır)
	api.Get("/dashboard", dashboard.DashboardHandler(cfg))
	api.Get("/machines", machine.ListMachinesHandler(machineCache))
	api.Get("/machines/:id", machine.MachineDetailHandler(cfg))
	api.Post("/tool-change", production.ToolChangeHandler(cfg))
	api.Post("/daily-production", production.CreateDailyProductionHandler(cfg))
	api.Get("/daily-production", production.ListDailyProductionHandler(cfg))
	api.Post("/work-session", production.CreateWorkSessionHandler(cfg))
	api.Get("/work-sessions", production.ListWorkSessionsHandler(cfg))

	// Malzeme
	api.Get("/materials/types", material.ListTypesHandler())
	api.Get("/materials/stock", auth.RequireAuth(), material.StockHandler())
	api.Post("/materials/entry", auth.RequireAuth(), material.CreateEntryHandler(cfg))
	api.Post("/materials/shipment", auth.RequireAuth(), material.CreateShipmentHandler(cfg))
	api.Get("/materials/:id", auth.RequireAuth(), material.DetailHandler(cfg))

	// Yönetim (staff veya superuser)
	adminRoutes := api.Group("/admin", auth.RequireAdmin())

	adminRoutes.Post("/machines", machine.CreateMachineHandler(machineCache))
	adminRoutes.Post("/machines/:id", machine.UpdateMachineHandler(machineCache))
	adminRoutes.Put("/machines/:id", machine.UpdateMachineHandler(machineCache))
	adminRoutes.Delete("/machines/:id/delete", machine.DeleteMachineHandler(machineCache))
	adminRoutes.Post("/tooltypes", machine.CreateToolTypeHandler(machineCache))
	adminRoutes.Post("/tooltypes/import", machine.ImportToolTypesHandler(machineCache))
	adminRoutes.Delete("/tooltypes/:id/delete", machine.DeleteToolTypeHandler(machineCache))

	adminRoutes.Post("/material-types", material.CreateTypeHandler())
	adminRoutes.Put("/material-types/:id", material.UpdateTypeHandler())

	adminRoutes.Get("/users", users.ListUsersHandler(cfg))
	adminRoutes.Post("/users", users.CreateUserHandler(cfg))
	adminRoutes.Put("/users/:id", users.UpdateUserHandler(cfg))

	adminRoutes.Get("/activity-logs", activity.ListActivityLogsHandler(cfg))
	adminRoutes.Delete("/activity-logs/:id", auth.RequireSuperuser(), activity.DeleteActivityLogHandler())

	return app
}

// GET /api/health
func healthHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			logger.FromCtx(c).Warn("veritabanı ping başarısız", zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "Veritabanına ulaşılamıyor")
		}
		return c.JSON(fiber.Map{
			"status": "ok",
			"site":   cfg.SiteTitle,
			"header": cfg.SiteHeader,
		})
	}
}
