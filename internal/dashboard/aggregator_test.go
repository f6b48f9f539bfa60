package dashboard

import (
	"testing"
	"time"

	"uretim-backend/internal/database/dbtest"
	"uretim-backend/internal/models"
	"uretim-backend/internal/production"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var istanbul = mustLoc("Europe/Istanbul")

func mustLoc(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func intPtr(v int) *int { return &v }

type fixture struct {
	db *gorm.DB
}

func (f fixture) machine(t *testing.T, name string, order int, active bool) models.Machine {
	t.Helper()
	m := models.Machine{Name: name, ShortName: name, OrderInLine: order, IsActive: active}
	require.NoError(t, f.db.Create(&m).Error)
	return m
}

func (f fixture) tool(t *testing.T, m models.Machine, name string) models.ToolType {
	t.Helper()
	tt := models.ToolType{MachineID: m.ID, Name: name, IsActive: true}
	require.NoError(t, f.db.Create(&tt).Error)
	return tt
}

func (f fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u := models.User{Username: name, PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f fixture) batch(t *testing.T, m models.Machine, at time.Time, counter *int, by *models.User, tools ...models.ToolType) models.ToolChangeBatch {
	t.Helper()
	b := models.ToolChangeBatch{MachineID: m.ID, Timestamp: at, CurrentCounter: counter}
	if by != nil {
		b.ChangedByID = &by.ID
	}
	for _, tt := range tools {
		b.Items = append(b.Items, models.ToolChangeBatchItem{ToolTypeID: tt.ID, Quantity: 1})
	}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}

func (f fixture) daily(t *testing.T, m models.Machine, day time.Time, total int, created time.Time) models.DailyProduction {
	t.Helper()
	dp := models.DailyProduction{MachineID: m.ID, Date: datatypes.Date(day), TotalCount: total, CreatedAt: created}
	require.NoError(t, f.db.Create(&dp).Error)
	return dp
}

func (f fixture) session(t *testing.T, m models.Machine, u models.User, start, end time.Time) models.WorkSession {
	t.Helper()
	s := models.WorkSession{MachineID: m.ID, UserID: u.ID, StartTime: start, EndTime: end}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func TestAggregateNoMachines(t *testing.T) {
	db := dbtest.Use(t)

	cards, err := Aggregate(db, istanbul, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestAggregateMachineWithoutRecordsHasEmptyFields(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "Testere", 1, true)

	cards, err := Aggregate(f.db, istanbul, time.Now())
	require.NoError(t, err)
	require.Len(t, cards, 1)

	c := cards[0]
	assert.Equal(t, m.ID, c.MachineID)
	assert.Nil(t, c.LastCounter)
	assert.Nil(t, c.TodayTotal)
	assert.Nil(t, c.LastChangeTime)
	assert.Equal(t, "", c.LastChangeTeams)
	assert.Equal(t, "", c.LastChangeUser)
	assert.Equal(t, "", c.LastSessionUser)
	assert.Equal(t, "", c.LastSessionRange)
}

func TestAggregateOrdersActiveMachinesByLine(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	f.machine(t, "Fanuc", 6, true)
	f.machine(t, "Testere", 1, true)
	f.machine(t, "Eski", 0, false)
	f.machine(t, "Yargı", 3, true)

	cards, err := Aggregate(f.db, istanbul, time.Now())
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Testere", cards[0].MachineName)
	assert.Equal(t, "Yargı", cards[1].MachineName)
	assert.Equal(t, "Fanuc", cards[2].MachineName)
}

func TestAggregatePicksLatestBatch(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "Altıköşe", 2, true)
	t1 := f.tool(t, m, "Kanal 1 - Takım 1")
	t2 := f.tool(t, m, "Kanal 2 - Takım 1")
	u := f.user(t, "mehmet")

	base := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	f.batch(t, m, base, intPtr(100), nil, t1)
	latest := f.batch(t, m, base.Add(2*time.Hour), intPtr(250), &u, t1, t2)
	f.batch(t, m, base.Add(time.Hour), intPtr(180), nil, t2)

	cards, err := Aggregate(f.db, istanbul, base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, cards, 1)

	c := cards[0]
	require.NotNil(t, c.LastCounter)
	assert.Equal(t, 250, *c.LastCounter)
	assert.Equal(t, "Kanal 1 - Takım 1 + Kanal 2 - Takım 1", c.LastChangeTeams)
	assert.Equal(t, "mehmet", c.LastChangeUser)
	require.NotNil(t, c.LastChangeTime)
	assert.Equal(t, latest.Timestamp.In(istanbul).Format(time.RFC3339), *c.LastChangeTime)
}

func TestAggregateBatchTieBrokenByHigherID(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "Yargı", 3, true)
	tt := f.tool(t, m, "Kesme Çakısı")

	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	f.batch(t, m, at, intPtr(1), nil, tt)
	f.batch(t, m, at, intPtr(2), nil, tt)

	for i := 0; i < 3; i++ {
		cards, err := Aggregate(f.db, istanbul, at)
		require.NoError(t, err)
		require.NotNil(t, cards[0].LastCounter)
		assert.Equal(t, 2, *cards[0].LastCounter)
	}
}

func TestAggregateTodayTotalUsesMostRecentRowOfLocalDay(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "İç Yiv", 4, true)

	// 22:30 UTC = ertesi gün 01:30 İstanbul
	now := time.Date(2026, 10, 16, 22, 30, 0, 0, time.UTC)
	today := production.LocalDate(now, istanbul)
	require.Equal(t, 17, today.Day())

	f.daily(t, m, today.AddDate(0, 0, -1), 999, now.Add(-2*time.Hour))
	f.daily(t, m, today, 120, now.Add(-time.Hour))
	f.daily(t, m, today, 340, now.Add(-time.Minute))
	f.daily(t, m, today, 200, now.Add(-30*time.Minute))

	cards, err := Aggregate(f.db, istanbul, now)
	require.NoError(t, err)
	require.NotNil(t, cards[0].TodayTotal)
	assert.Equal(t, 340, *cards[0].TodayTotal)
}

func TestAggregateNoProductionToday(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "Angelina", 5, true)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	f.daily(t, m, production.LocalDate(now, istanbul).AddDate(0, 0, -1), 50, now.Add(-24*time.Hour))

	cards, err := Aggregate(f.db, istanbul, now)
	require.NoError(t, err)
	assert.Nil(t, cards[0].TodayTotal)
}

func TestAggregateLatestSessionByEndTime(t *testing.T) {
	f := fixture{db: dbtest.Use(t)}
	m := f.machine(t, "Fanuc", 6, true)
	ali := f.user(t, "ali")
	ayse := f.user(t, "ayse")

	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	f.session(t, m, ali, day.Add(5*time.Hour), day.Add(13*time.Hour))
	f.session(t, m, ayse, day.Add(4*time.Hour), day.Add(14*time.Hour+15*time.Minute))

	cards, err := Aggregate(f.db, istanbul, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "ayse", cards[0].LastSessionUser)
	assert.Equal(t, "07:00–17:15", cards[0].LastSessionRange)
}

func TestBuildCardsKeepsFirstRowPerMachine(t *testing.T) {
	machines := []models.Machine{{ID: 1, Name: "A", ShortName: "A"}, {ID: 2, Name: "B", ShortName: "B"}}
	batches := []models.ToolChangeBatch{
		{MachineID: 1, CurrentCounter: intPtr(30), Timestamp: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
			Items: []models.ToolChangeBatchItem{{ToolType: models.ToolType{Name: "X"}}}},
		{MachineID: 1, CurrentCounter: intPtr(20), Timestamp: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)},
	}
	daily := []models.DailyProduction{
		{MachineID: 2, TotalCount: 7},
		{MachineID: 2, TotalCount: 5},
	}

	cards := BuildCards(machines, batches, daily, nil, time.UTC)
	require.Len(t, cards, 2)
	assert.Equal(t, 30, *cards[0].LastCounter)
	assert.Equal(t, "X", cards[0].LastChangeTeams)
	assert.Equal(t, "", cards[0].LastChangeUser)
	assert.Nil(t, cards[0].TodayTotal)
	assert.Nil(t, cards[1].LastCounter)
	assert.Equal(t, 7, *cards[1].TodayTotal)
}

func TestSessionRangeFormatting(t *testing.T) {
	start := time.Date(2026, 10, 17, 5, 5, 0, 0, time.UTC)
	end := time.Date(2026, 10, 17, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "05:05–13:45", SessionRange(start, end, time.UTC))
	assert.Equal(t, "08:05–16:45", SessionRange(start, end, istanbul))
}
