package production

import (
	"fmt"
	"time"

	"uretim-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// LocalDate: verilen anın yerel takvim günü, UTC gece yarısı olarak (tarih kolonlarında bu biçim saklanır)
func LocalDate(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// latestPerGroup: aynı gruptaki daha yeni (ya da eşit zamanlı ve daha büyük id'li) satırı olmayan
// satırları seçen koşul. Böylece her grup için tek satır döner; eşitlikte büyük id kazanır.
func latestPerGroup(table, groupCol, orderCol string) string {
	return fmt.Sprintf(
		"NOT EXISTS (SELECT 1 FROM %[1]s n WHERE n.%[2]s = %[1]s.%[2]s AND (n.%[3]s > %[1]s.%[3]s OR (n.%[3]s = %[1]s.%[3]s AND n.id > %[1]s.id)))",
		table, groupCol, orderCol,
	)
}

// LatestBatches: her tezgahın en son takım değişimi (kalemler ve takım tipleriyle birlikte)
func LatestBatches(db *gorm.DB, machineIDs []uint) ([]models.ToolChangeBatch, error) {
	var batches []models.ToolChangeBatch
	if len(machineIDs) == 0 {
		return batches, nil
	}
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Items.ToolType").
		Preload("ChangedBy").
		Where("machine_id IN ?", machineIDs).
		Where(latestPerGroup("tool_change_batches", "machine_id", "changed_at")).
		Order("changed_at DESC").Order("id DESC").
		Find(&batches).Error
	return batches, err
}

// DailyForDate: tezgahların verilen gündeki en son oluşturulan üretim kaydı.
// Aynı gün için birden fazla satır olabilir; en son oluşturulan (eşitlikte büyük id) geçerlidir.
func DailyForDate(db *gorm.DB, machineIDs []uint, day time.Time) ([]models.DailyProduction, error) {
	var rows []models.DailyProduction
	if len(machineIDs) == 0 {
		return rows, nil
	}
	err := db.
		Where("machine_id IN ? AND date = ?", machineIDs, datatypes.Date(day)).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// LatestSessions: her tezgahın bitiş zamanına göre en son çalışma oturumu
func LatestSessions(db *gorm.DB, machineIDs []uint) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	if len(machineIDs) == 0 {
		return sessions, nil
	}
	err := db.
		Preload("User").
		Where("machine_id IN ?", machineIDs).
		Where(latestPerGroup("work_sessions", "machine_id", "end_time")).
		Order("end_time DESC").Order("id DESC").
		Find(&sessions).Error
	return sessions, err
}

// FirstPerMachine: azalan sırada gelen satırlardan her tezgah için ilkini tutar
func FirstPerMachine[T any](rows []T, machineID func(T) uint) map[uint]T {
	out := make(map[uint]T, len(rows))
	for _, r := range rows {
		id := machineID(r)
		if _, ok := out[id]; !ok {
			out[id] = r
		}
	}
	return out
}

// TotalForDate: tek tezgah için günün geçerli toplamı, kayıt yoksa nil
func TotalForDate(db *gorm.DB, machineID uint, day time.Time) (*int, error) {
	rows, err := DailyForDate(db, []uint{machineID}, day)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	total := rows[0].TotalCount
	return &total, nil
}
