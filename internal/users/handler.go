package users

import (
	"errors"
	"strings"
	"time"

	"uretim-backend/internal/auth"
	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username  string          `json:"username" validate:"required,max=150"`
	Password  string          `json:"password" validate:"required,min=6"`
	Role      models.UserRole `json:"role" validate:"omitempty,oneof=user staff superuser"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Email     string          `json:"email" validate:"omitempty,email"`
}

type UpdateUserRequest struct {
	Role      *models.UserRole `json:"role" validate:"omitempty,oneof=user staff superuser"`
	IsActive  *bool            `json:"is_active"`
	FirstName *string          `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string          `json:"last_name" validate:"omitempty,max=150"`
	Email     *string          `json:"email" validate:"omitempty,email"`
	Password  *string          `json:"password" validate:"omitempty,min=6"`
}

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	IsAdmin   bool            `json:"is_admin"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
}

func userResponse(u models.User, loc *time.Location) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		IsAdmin:   u.Role.IsAdmin(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

// superuser rolünü yalnızca superuser verebilir
func canGrant(actor *models.User, role models.UserRole) bool {
	if role != models.RoleSuperuser {
		return true
	}
	return actor != nil && actor.Role == models.RoleSuperuser
}

// GET /api/admin/users
func ListUsersHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.User
		if err := database.DB.Order("username").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]UserResponse, 0, len(list))
		for _, u := range list {
			resp = append(resp, userResponse(u, cfg.Location))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/users
func CreateUserHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		role := body.Role
		if role == "" {
			role = models.RoleUser
		}
		if !canGrant(auth.CurrentUser(c), role) {
			return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
		}

		username := strings.TrimSpace(body.Username)
		var count int64
		if err := database.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı kontrol edilemedi")
		}
		if count > 0 {
			return httpx.FieldError("username", "Bu kullanıcı adı zaten kullanılıyor.")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
		}

		u := models.User{
			Username:     username,
			FirstName:    strings.TrimSpace(body.FirstName),
			LastName:     strings.TrimSpace(body.LastName),
			Email:        strings.TrimSpace(body.Email),
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
		}
		if err := database.DB.Create(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(userResponse(u, cfg.Location))
	}
}

// PUT /api/admin/users/:id
func UpdateUserHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateUserRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		var u models.User
		if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}

		actor := auth.CurrentUser(c)
		// Superuser hesabına yalnızca superuser dokunabilir
		if u.Role == models.RoleSuperuser && !canGrant(actor, models.RoleSuperuser) {
			return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
		}

		updates := map[string]interface{}{}
		if body.Role != nil {
			if !canGrant(actor, *body.Role) {
				return fiber.NewError(fiber.StatusForbidden, httpx.MsgForbidden)
			}
			updates["role"] = *body.Role
		}
		if body.IsActive != nil {
			updates["is_active"] = *body.IsActive
		}
		if body.FirstName != nil {
			updates["first_name"] = strings.TrimSpace(*body.FirstName)
		}
		if body.LastName != nil {
			updates["last_name"] = strings.TrimSpace(*body.LastName)
		}
		if body.Email != nil {
			updates["email"] = strings.TrimSpace(*body.Email)
		}
		if body.Password != nil {
			hash, err := auth.HashPassword(*body.Password)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
			}
			updates["password_hash"] = hash
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&u).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
			}
		}

		if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}
		return c.JSON(userResponse(u, cfg.Location))
	}
}
