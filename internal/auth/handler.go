package auth

import (
	"strings"
	"time"

	"uretim-backend/internal/activity"
	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Geçersiz kullanıcı adı veya şifre"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type WhoAmIResponse struct {
	IsAuthenticated bool            `json:"is_authenticated"`
	ID              *uint           `json:"id"`
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	IsAdmin         bool            `json:"is_admin"`
	Role            models.UserRole `json:"role,omitempty"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// POST /api/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		var user models.User
		if err := database.DB.Where("username = ?", strings.TrimSpace(body.Username)).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		if err := activity.WriteLog(database.DB, activity.LogOptions{
			UserID:  &user.ID,
			Action:  models.ActionLogin,
			Details: "Web login",
		}); err != nil {
			return err
		}

		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(cfg.TokenTTL),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.JSON(fiber.Map{
			"detail": "ok",
			"token":  token,
			"user":   whoAmI(&user),
		})
	}
}

// POST /api/logout
func LogoutHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{"detail": "ok"})
	}
}

// GET /api/whoami
func WhoAmIHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(whoAmI(CurrentUser(c)))
	}
}

func whoAmI(u *models.User) WhoAmIResponse {
	if u == nil {
		return WhoAmIResponse{Username: "anonymous"}
	}
	id := u.ID
	return WhoAmIResponse{
		IsAuthenticated: true,
		ID:              &id,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsAdmin:         u.Role.IsAdmin(),
		Role:            u.Role,
	}
}
