package machine

import (
	"strings"

	"uretim-backend/internal/database"
	"uretim-backend/internal/logger"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImportResult struct {
	CreatedCount      int      `json:"created_count"`
	ExistingCount     int      `json:"existing_count"`
	UnmatchedMachines []string `json:"unmatched_machines"`
}

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir, küçük harfe indirir
// Örn: "İç Yiv" -> "ic yiv"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(result.String()), " "))
}

// isHeaderRow: "Tezgah", "Makine" ya da "Machine" ile başlayan ilk satır başlık kabul edilir
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeTurkish(row[0])
	return strings.HasPrefix(first, "tezgah") || strings.HasPrefix(first, "makine") || strings.HasPrefix(first, "machine")
}

// ImportToolTypes: satırlar [tezgah adı veya kısa adı, takım adı] biçimindedir.
// Tezgahta aynı isimde takım varsa atlanır; eşleşmeyen tezgah adları raporlanır.
func ImportToolTypes(db *gorm.DB, rows [][]string) (ImportResult, error) {
	res := ImportResult{UnmatchedMachines: []string{}}

	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}

	var machines []models.Machine
	if err := db.Preload("ToolTypes").Find(&machines).Error; err != nil {
		return res, err
	}

	byName := make(map[string]*models.Machine, len(machines)*2)
	existing := make(map[uint]map[string]bool, len(machines))
	for i := range machines {
		m := &machines[i]
		byName[normalizeTurkish(m.Name)] = m
		if m.ShortName != "" {
			if _, taken := byName[normalizeTurkish(m.ShortName)]; !taken {
				byName[normalizeTurkish(m.ShortName)] = m
			}
		}
		names := make(map[string]bool, len(m.ToolTypes))
		for _, t := range m.ToolTypes {
			names[normalizeTurkish(t.Name)] = true
		}
		existing[m.ID] = names
	}

	unmatched := map[string]bool{}
	var toCreate []models.ToolType

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		machineName := strings.TrimSpace(row[0])
		toolName := strings.TrimSpace(row[1])
		if machineName == "" || toolName == "" {
			continue
		}

		m, ok := byName[normalizeTurkish(machineName)]
		if !ok {
			if !unmatched[machineName] {
				unmatched[machineName] = true
				res.UnmatchedMachines = append(res.UnmatchedMachines, machineName)
			}
			continue
		}

		key := normalizeTurkish(toolName)
		if existing[m.ID][key] {
			res.ExistingCount++
			continue
		}
		existing[m.ID][key] = true
		toCreate = append(toCreate, models.ToolType{MachineID: m.ID, Name: toolName, IsActive: true})
	}

	if len(toCreate) > 0 {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Omit("Machine").Create(&toCreate).Error
		}); err != nil {
			return res, err
		}
	}
	res.CreatedCount = len(toCreate)
	return res, nil
}

// POST /api/admin/tooltypes/import
// XLSX dosyasının ilk sayfasındaki [tezgah, takım] satırlarından eksik takım tiplerini ekler
func ImportToolTypesHandler(lc *ListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı")
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sayfa bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sayfa okunamadı")
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		res, err := ImportToolTypes(database.DB, rows)
		if err != nil {
			logger.FromCtx(c).Error("takım tipi içe aktarma başarısız", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Takım tipleri kaydedilemedi")
		}
		if res.CreatedCount > 0 {
			lc.Flush()
		}

		logger.FromCtx(c).Info("takım tipleri içe aktarıldı",
			zap.Int("created", res.CreatedCount),
			zap.Int("existing", res.ExistingCount),
			zap.Strings("unmatched", res.UnmatchedMachines),
		)
		return c.JSON(res)
	}
}
