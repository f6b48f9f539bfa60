package activity

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database/dbtest"
	"uretim-backend/internal/httpx"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestApp() *fiber.App {
	cfg := &config.Config{Location: time.UTC}
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(zap.NewNop())})
	app.Get("/logs", ListActivityLogsHandler(cfg))
	app.Delete("/logs/:id", DeleteActivityLogHandler())
	return app
}

func list(t *testing.T, app *fiber.App, query string) []ActivityLogResponse {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/logs"+query, nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var out []ActivityLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestWriteLogRollsBackWithTransaction(t *testing.T) {
	db := dbtest.Use(t)

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, WriteLog(tx, LogOptions{Action: models.ActionLogin, Details: "x"}))
		return assert.AnError
	})

	var n int64
	db.Model(&models.ActivityLog{}).Count(&n)
	assert.Zero(t, n)
}

func TestListActivityLogsNewestFirstWithFilters(t *testing.T) {
	db := dbtest.Use(t)
	app := newTestApp()

	u := models.User{Username: "usta", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	m := models.Machine{Name: "Yargı", ShortName: "Yargı", OrderInLine: 3, IsActive: true}
	require.NoError(t, db.Create(&m).Error)

	base := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	rows := []models.ActivityLog{
		{UserID: &u.ID, Action: models.ActionLogin, Details: "Web login", CreatedAt: base},
		{UserID: &u.ID, Action: models.ActionToolChange, MachineID: &m.ID, Details: "tools=Kesme Çakısı counter=-", CreatedAt: base.Add(time.Hour)},
		{Action: models.ActionDailyProduction, MachineID: &m.ID, Details: "date=2026-10-17 total=10", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	all := list(t, app, "")
	require.Len(t, all, 3)
	assert.Equal(t, models.ActionDailyProduction, all[0].Action)
	assert.Equal(t, "", all[0].UserUsername)
	assert.Equal(t, "Yargı", all[0].MachineShortName)
	assert.Equal(t, "usta", all[1].UserUsername)
	assert.Equal(t, "2026-10-17T09:00:00Z", all[1].CreatedAt)

	tool := list(t, app, "?action=tool_change")
	require.Len(t, tool, 1)
	assert.Equal(t, rows[1].ID, tool[0].ID)

	byMachine := list(t, app, "?machine_id="+strconv.FormatUint(uint64(m.ID), 10))
	assert.Len(t, byMachine, 2)
}

func TestListActivityLogsCapsAt200(t *testing.T) {
	db := dbtest.Use(t)
	app := newTestApp()

	rows := make([]models.ActivityLog, 0, 205)
	for i := 0; i < 205; i++ {
		rows = append(rows, models.ActivityLog{Action: models.ActionLogin, Details: strconv.Itoa(i)})
	}
	require.NoError(t, db.CreateInBatches(&rows, 50).Error)

	got := list(t, app, "")
	assert.Len(t, got, 200)
}

func TestDeleteActivityLog(t *testing.T) {
	db := dbtest.Use(t)
	app := newTestApp()

	row := models.ActivityLog{Action: models.ActionLogin}
	require.NoError(t, db.Create(&row).Error)
	path := "/logs/" + strconv.FormatUint(uint64(row.ID), 10)

	resp, err := app.Test(httptest.NewRequest("DELETE", path, nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", path, nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
