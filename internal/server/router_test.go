package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"uretim-backend/internal/auth"
	"uretim-backend/internal/config"
	"uretim-backend/internal/dashboard"
	"uretim-backend/internal/database"
	"uretim-backend/internal/database/dbtest"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       strings.Repeat("r", 32),
		TokenTTL:        time.Hour,
		SessionCookie:   "uretim_session",
		CORSOrigins:     "http://localhost:5173",
		Location:        time.UTC,
		LoginRatePerSec: 100,
		LoginRateBurst:  100,
		SiteTitle:       "Üretim Takip",
		SiteHeader:      "Üretim Takip Yönetimi",
	}
}

type client struct {
	t      *testing.T
	app    *fiber.App
	cookie string
}

func (cl *client) do(method, path, body string, out any) int {
	cl.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if cl.cookie != "" {
		req.Header.Set("Cookie", cl.cookie)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func (cl *client) login(username, password string) {
	cl.t.Helper()
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	require.Equal(cl.t, http.StatusOK, resp.StatusCode)
	for _, ck := range resp.Cookies() {
		if ck.Name == "uretim_session" {
			cl.cookie = ck.Name + "=" + ck.Value
		}
	}
	require.NotEmpty(cl.t, cl.cookie)
}

func setup(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	dbtest.Use(t)
	cfg := testConfig()
	return NewApp(cfg, zap.NewNop()), cfg
}

func newUser(t *testing.T, username, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Username: username, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, database.DB.Create(&u).Error)
	return u
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestHealth(t *testing.T) {
	app, _ := setup(t)
	cl := &client{t: t, app: app}

	var body map[string]any
	require.Equal(t, 200, cl.do("GET", "/api/health", "", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Üretim Takip", body["site"])
}

func TestShopFloorFlow(t *testing.T) {
	app, _ := setup(t)
	newUser(t, "sef", "gizli123", models.RoleStaff)

	staff := &client{t: t, app: app}
	staff.login("sef", "gizli123")

	var m map[string]any
	require.Equal(t, 201, staff.do("POST", "/api/admin/machines", `{"name":"Altıköşe Robot","short_name":"Altıköşe","order_in_line":2}`, &m))
	machineID := uint(m["id"].(float64))

	var tt map[string]any
	require.Equal(t, 201, staff.do("POST", "/api/admin/tooltypes", `{"machine_id":`+id(machineID)+`,"name":"Kanal 1 - Takım 1"}`, &tt))
	toolID := uint(tt["id"].(float64))

	// Anonim tezgah ekranı
	floor := &client{t: t, app: app}

	var machines []map[string]any
	require.Equal(t, 200, floor.do("GET", "/api/machines/", "", &machines))
	require.Len(t, machines, 1)

	require.Equal(t, 201, floor.do("POST", "/api/tool-change/", `{"machine_id":`+id(machineID)+`,"tool_type_ids":[`+id(toolID)+`],"current_counter":5000}`, nil))
	require.Equal(t, 201, floor.do("POST", "/api/daily-production/", `{"machine_id":`+id(machineID)+`,"total_count":120}`, nil))
	require.Equal(t, 201, floor.do("POST", "/api/daily-production/", `{"machine_id":`+id(machineID)+`,"total_count":180}`, nil))

	var cards []dashboard.MachineCard
	require.Equal(t, 200, floor.do("GET", "/api/dashboard/", "", &cards))
	require.Len(t, cards, 1)
	require.NotNil(t, cards[0].LastCounter)
	assert.Equal(t, 5000, *cards[0].LastCounter)
	assert.Equal(t, "Kanal 1 - Takım 1", cards[0].LastChangeTeams)
	assert.Equal(t, "", cards[0].LastChangeUser)
	require.NotNil(t, cards[0].TodayTotal)
	assert.Equal(t, 180, *cards[0].TodayTotal)

	var logs []map[string]any
	require.Equal(t, 200, staff.do("GET", "/api/admin/activity-logs", "", &logs))
	// login + tool_change + 2 daily_production
	require.Len(t, logs, 4)
	assert.Equal(t, "daily_production", logs[0]["action"])
	assert.Equal(t, "Altıköşe", logs[0]["machine_short_name"])

	var metrics string
	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	metrics = string(b)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, metrics, "uretim_tool_changes_total")
}

func TestNonStaffGetsForbiddenAndNothingIsWritten(t *testing.T) {
	app, _ := setup(t)
	newUser(t, "isci", "gizli123", models.RoleUser)
	mt := models.MaterialType{Name: "Somun", IsActive: true}
	require.NoError(t, database.DB.Create(&mt).Error)
	m := models.Machine{Name: "Testere", ShortName: "Testere", OrderInLine: 1, IsActive: true}
	require.NoError(t, database.DB.Create(&m).Error)

	worker := &client{t: t, app: app}
	worker.login("isci", "gizli123")

	cases := []struct{ method, path, body string }{
		{"POST", "/api/admin/machines", `{"name":"X","short_name":"X"}`},
		{"PUT", "/api/admin/machines/" + id(m.ID), `{"name":"Y"}`},
		{"DELETE", "/api/admin/machines/" + id(m.ID) + "/delete", ""},
		{"POST", "/api/admin/tooltypes", `{"machine_id":` + id(m.ID) + `,"name":"T"}`},
		{"POST", "/api/admin/material-types", `{"name":"Pul"}`},
		{"GET", "/api/admin/activity-logs", ""},
		{"GET", "/api/admin/users", ""},
		{"POST", "/api/materials/shipment", `{"material_type_id":` + id(mt.ID) + `,"boxes_count":1,"units_per_box":1}`},
	}
	for _, tc := range cases {
		var body map[string]any
		status := worker.do(tc.method, tc.path, tc.body, &body)
		assert.Equal(t, 403, status, tc.path)
		assert.Equal(t, "Yetki yok", body["detail"], tc.path)
	}

	var n int64
	database.DB.Model(&models.Machine{}).Count(&n)
	assert.Equal(t, int64(1), n)
	database.DB.Model(&models.ToolType{}).Count(&n)
	assert.Zero(t, n)
	database.DB.Model(&models.MaterialType{}).Count(&n)
	assert.Equal(t, int64(1), n)
	database.DB.Model(&models.MaterialShipment{}).Count(&n)
	assert.Zero(t, n)

	var unchanged models.Machine
	require.NoError(t, database.DB.First(&unchanged, m.ID).Error)
	assert.Equal(t, "Testere", unchanged.Name)
}

func TestProtectedMaterialEndpointsRequireLogin(t *testing.T) {
	app, _ := setup(t)
	anon := &client{t: t, app: app}

	assert.Equal(t, 200, anon.do("GET", "/api/materials/types/", "", nil))
	assert.Equal(t, 401, anon.do("GET", "/api/materials/stock/", "", nil))
	assert.Equal(t, 401, anon.do("POST", "/api/materials/entry/", `{"material_type_id":1,"boxes_count":1,"units_per_box":1}`, nil))
	assert.Equal(t, 401, anon.do("POST", "/api/materials/shipment/", `{"material_type_id":1,"boxes_count":1,"units_per_box":1}`, nil))
	assert.Equal(t, 401, anon.do("GET", "/api/admin/activity-logs", "", nil))
}

func TestStockThroughAPI(t *testing.T) {
	app, _ := setup(t)
	newUser(t, "sef", "gizli123", models.RoleStaff)
	a := models.MaterialType{Name: "A Kutusu", IsActive: true}
	empty := models.MaterialType{Name: "B Kutusu", IsActive: true}
	require.NoError(t, database.DB.Create(&a).Error)
	require.NoError(t, database.DB.Create(&empty).Error)

	staff := &client{t: t, app: app}
	staff.login("sef", "gizli123")

	for _, boxes := range []string{"10", "5"} {
		require.Equal(t, 201, staff.do("POST", "/api/materials/entry", `{"material_type_id":`+id(a.ID)+`,"boxes_count":`+boxes+`,"units_per_box":1}`, nil))
	}
	require.Equal(t, 201, staff.do("POST", "/api/materials/shipment", `{"material_type_id":`+id(a.ID)+`,"boxes_count":3,"units_per_box":1}`, nil))

	var stock []map[string]any
	require.Equal(t, 200, staff.do("GET", "/api/materials/stock", "", &stock))
	require.Len(t, stock, 2)
	assert.Equal(t, float64(a.ID), stock[0]["id"])
	assert.NotContains(t, stock[0], "material_type_id")
	assert.Equal(t, float64(15), stock[0]["in_boxes"])
	assert.Equal(t, float64(3), stock[0]["out_boxes"])
	assert.Equal(t, float64(12), stock[0]["stock_boxes"])
	assert.Equal(t, float64(0), stock[1]["in_boxes"])
	assert.Equal(t, float64(0), stock[1]["out_boxes"])
	assert.Equal(t, float64(0), stock[1]["stock_boxes"])
}

func TestActivityLogDeleteRequiresSuperuser(t *testing.T) {
	app, _ := setup(t)
	newUser(t, "sef", "gizli123", models.RoleStaff)
	newUser(t, "patron", "gizli123", models.RoleSuperuser)

	staff := &client{t: t, app: app}
	staff.login("sef", "gizli123")
	boss := &client{t: t, app: app}
	boss.login("patron", "gizli123")

	var logs []map[string]any
	require.Equal(t, 200, staff.do("GET", "/api/admin/activity-logs?action=login", "", &logs))
	require.Len(t, logs, 2)
	logID := uint(logs[0]["id"].(float64))

	var body map[string]any
	assert.Equal(t, 403, staff.do("DELETE", "/api/admin/activity-logs/"+id(logID), "", &body))
	assert.Equal(t, "Yetki yok", body["detail"])

	assert.Equal(t, 204, boss.do("DELETE", "/api/admin/activity-logs/"+id(logID), "", nil))
	assert.Equal(t, 404, boss.do("DELETE", "/api/admin/activity-logs/"+id(logID), "", nil))

	require.Equal(t, 200, staff.do("GET", "/api/admin/activity-logs", "", &logs))
	assert.Len(t, logs, 1)
}

func TestWhoAmIAndLogoutThroughAPI(t *testing.T) {
	app, _ := setup(t)
	newUser(t, "patron", "gizli123", models.RoleSuperuser)

	cl := &client{t: t, app: app}
	var who map[string]any
	require.Equal(t, 200, cl.do("GET", "/api/whoami/", "", &who))
	assert.Equal(t, false, who["is_authenticated"])

	cl.login("patron", "gizli123")
	require.Equal(t, 200, cl.do("GET", "/api/whoami/", "", &who))
	assert.Equal(t, true, who["is_authenticated"])
	assert.Equal(t, true, who["is_admin"])
	assert.Equal(t, "superuser", who["role"])

	var out map[string]any
	require.Equal(t, 200, cl.do("POST", "/api/logout/", "", &out))
	assert.Equal(t, "ok", out["detail"])

	assert.Equal(t, 401, (&client{t: t, app: app}).do("POST", "/api/login", `{"username":"patron","password":"yanlis"}`, nil))
}
