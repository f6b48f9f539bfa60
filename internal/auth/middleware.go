package auth

import (
	"strings"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey = "user_id"
	CtxUserKey   = "user"
)

// Authenticate: token varsa (Bearer veya oturum çerezi) kullanıcıyı locals'a yazar.
// Token yoksa ya da geçersizse isteği anonim olarak devam ettirir; zorunluluk RequireAuth ile sağlanır.
func Authenticate(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFromRequest(c, cfg.SessionCookie)
		if tokenStr == "" {
			return c.Next()
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return c.Next()
		}

		// Rol ve aktiflik bilgisi her istekte veritabanından okunur
		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil || !user.IsActive {
			return c.Next()
		}

		c.Locals(CtxUserIDKey, user.ID)
		c.Locals(CtxUserKey, &user)
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if h := c.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(cookieName)
}

func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kimlik doğrulama bilgileri sağlanmadı")
		}
		return c.Next()
	}
}

// RequireAdmin: staff veya superuser değilse 403 "Yetki yok"
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kimlik doğrulama bilgileri sağlanmadı")
		}
		if !u.Role.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
		}
		return c.Next()
	}
}

func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kimlik doğrulama bilgileri sağlanmadı")
		}
		if u.Role != models.RoleSuperuser {
			return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
		}
		return c.Next()
	}
}

// CurrentUser: oturum açmış kullanıcı, anonimse nil
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(CtxUserKey).(*models.User)
	return u
}

// CurrentUserID: kayıtlara yazılacak kullanıcı id'si, anonimse nil
func CurrentUserID(c *fiber.Ctx) *uint {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return nil
	}
	return &id
}
