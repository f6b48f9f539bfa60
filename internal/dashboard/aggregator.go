package dashboard

import (
	"fmt"
	"strings"
	"time"

	"uretim-backend/internal/models"
	"uretim-backend/internal/production"

	"gorm.io/gorm"
)

// MachineCard: ana ekrandaki tezgah özeti
type MachineCard struct {
	MachineID        uint    `json:"machine_id"`
	MachineName      string  `json:"machine_name"`
	MachineShortName string  `json:"machine_short_name"`
	LastCounter      *int    `json:"last_counter"`
	LastChangeTeams  string  `json:"last_change_teams"`
	LastChangeTime   *string `json:"last_change_time"`
	LastChangeUser   string  `json:"last_change_user"`
	TodayTotal       *int    `json:"today_total"`
	LastSessionUser  string  `json:"last_session_user"`
	LastSessionRange string  `json:"last_session_range"`
}

// Aggregate: aktif tezgahlar için özet kartlarını üretir. now, yerel "bugün"ü belirler.
func Aggregate(db *gorm.DB, loc *time.Location, now time.Time) ([]MachineCard, error) {
	var machines []models.Machine
	if err := db.Where("is_active = ?", true).Order("order_in_line").Order("id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("tezgahlar okunamadı: %w", err)
	}
	if len(machines) == 0 {
		return []MachineCard{}, nil
	}

	ids := make([]uint, 0, len(machines))
	for _, m := range machines {
		ids = append(ids, m.ID)
	}

	batches, err := production.LatestBatches(db, ids)
	if err != nil {
		return nil, fmt.Errorf("takım değişimleri okunamadı: %w", err)
	}
	daily, err := production.DailyForDate(db, ids, production.LocalDate(now, loc))
	if err != nil {
		return nil, fmt.Errorf("günlük üretim okunamadı: %w", err)
	}
	sessions, err := production.LatestSessions(db, ids)
	if err != nil {
		return nil, fmt.Errorf("çalışma oturumları okunamadı: %w", err)
	}

	return BuildCards(machines, batches, daily, sessions, loc), nil
}

// BuildCards: sorgu sonuçlarını kartlara katlar. batches/daily/sessions azalan sırada olmalı;
// her tezgah için ilk satır kullanılır.
func BuildCards(
	machines []models.Machine,
	batches []models.ToolChangeBatch,
	daily []models.DailyProduction,
	sessions []models.WorkSession,
	loc *time.Location,
) []MachineCard {
	lastBatch := production.FirstPerMachine(batches, func(b models.ToolChangeBatch) uint { return b.MachineID })
	today := production.FirstPerMachine(daily, func(d models.DailyProduction) uint { return d.MachineID })
	lastSession := production.FirstPerMachine(sessions, func(s models.WorkSession) uint { return s.MachineID })

	cards := make([]MachineCard, 0, len(machines))
	for _, m := range machines {
		card := MachineCard{
			MachineID:        m.ID,
			MachineName:      m.Name,
			MachineShortName: m.ShortName,
		}

		if b, ok := lastBatch[m.ID]; ok {
			card.LastChangeTeams = TeamNames(b.Items)
			card.LastCounter = b.CurrentCounter
			ts := b.Timestamp.In(loc).Format(time.RFC3339)
			card.LastChangeTime = &ts
			if b.ChangedBy != nil {
				card.LastChangeUser = b.ChangedBy.Username
			}
		}

		if dp, ok := today[m.ID]; ok {
			total := dp.TotalCount
			card.TodayTotal = &total
		}

		if s, ok := lastSession[m.ID]; ok {
			card.LastSessionUser = s.User.Username
			card.LastSessionRange = SessionRange(s.StartTime, s.EndTime, loc)
		}

		cards = append(cards, card)
	}
	return cards
}

// TeamNames: değişen takımların adlarını " + " ile birleştirir
func TeamNames(items []models.ToolChangeBatchItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.ToolType.Name)
	}
	return strings.Join(names, " + ")
}

// SessionRange: "HH:MM–HH:MM"
func SessionRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("15:04") + "–" + end.In(loc).Format("15:04")
}
