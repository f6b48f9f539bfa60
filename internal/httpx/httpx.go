package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	MsgForbidden  = "Yetki yok"
	MsgBadBody    = "Geçersiz istek gövdesi"
	MsgValidation = "Geçersiz veri gönderildi"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError: alan bazlı doğrulama hataları (400)
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return MsgValidation + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Status() int { return fiber.StatusBadRequest }

// FieldError: tek alan için doğrulama hatası üretir
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Bind: JSON gövdesini çözer ve validate tag'lerine göre doğrular
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, MsgBadBody)
	}
	return Validate(out)
}

func Validate(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusBadRequest, MsgValidation)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Bu alan zorunlu."
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("En az %s öğe/karakter olmalı.", fe.Param())
		}
		return fmt.Sprintf("En az %s olmalı.", fe.Param())
	case "max":
		return fmt.Sprintf("En fazla %s olabilir.", fe.Param())
	case "gt":
		return fmt.Sprintf("%s değerinden büyük olmalı.", fe.Param())
	case "gte":
		return fmt.Sprintf("%s veya daha büyük olmalı.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Şunlardan biri olmalı: %s.", fe.Param())
	default:
		return "Geçersiz değer."
	}
}

// ErrorHandler: tüm hataları {"detail": "..."} biçiminde döndürür
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": MsgValidation,
				"errors": verr.Fields,
			})
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return c.Status(ferr.Code).JSON(fiber.Map{
				"detail": ferr.Message,
			})
		}

		log.Error("Beklenmeyen hata", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Beklenmeyen sunucu hatası",
		})
	}
}

// ParamID: :id gibi path parametrelerini pozitif sayı olarak okur
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return uint(id), nil
}
