package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sampleRequest struct {
	MachineID   uint   `json:"machine_id" validate:"required"`
	ToolTypeIDs []uint `json:"tool_type_ids" validate:"required,min=1"`
	TotalCount  *int   `json:"total_count" validate:"required,gte=0"`
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Post("/bind", func(c *fiber.Ctx) error {
		var body sampleRequest
		if err := Bind(c, &body); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, MsgForbidden)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db down")
	})
	return app
}

func decode(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestBindReportsFieldErrors(t *testing.T) {
	status, body := decode(t, newApp(), "POST", "/bind", `{"tool_type_ids": []}`)

	assert.Equal(t, 400, status)
	assert.Equal(t, MsgValidation, body["detail"])
	fields := body["errors"].(map[string]any)
	assert.Contains(t, fields, "machine_id")
	assert.Contains(t, fields, "tool_type_ids")
	assert.Contains(t, fields, "total_count")
}

func TestBindAcceptsValidBody(t *testing.T) {
	status, _ := decode(t, newApp(), "POST", "/bind", `{"machine_id": 1, "tool_type_ids": [2], "total_count": 0}`)
	assert.Equal(t, 204, status)
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	status, body := decode(t, newApp(), "POST", "/bind", `{"machine_id": "abc"`)
	assert.Equal(t, 400, status)
	assert.Equal(t, MsgBadBody, body["detail"])
}

func TestErrorHandlerShapes(t *testing.T) {
	app := newApp()

	status, body := decode(t, app, "GET", "/forbidden", "")
	assert.Equal(t, 403, status)
	assert.Equal(t, map[string]any{"detail": "Yetki yok"}, body)

	status, body = decode(t, app, "GET", "/boom", "")
	assert.Equal(t, 500, status)
	assert.Equal(t, "Beklenmeyen sunucu hatası", body["detail"])
}
