package material

import (
	"uretim-backend/internal/models"

	"gorm.io/gorm"
)

// StockRow: malzeme tipi başına giriş, çıkış ve kalan (negatif olabilir)
type StockRow struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	InBoxes    int64  `json:"in_boxes"`
	OutBoxes   int64  `json:"out_boxes"`
	StockBoxes int64  `json:"stock_boxes"`
	InUnits    int64  `json:"in_units"`
	OutUnits   int64  `json:"out_units"`
	StockUnits int64  `json:"stock_units"`
}

type sumRow struct {
	MaterialTypeID uint
	Boxes          int64
	Units          int64
}

func sums(db *gorm.DB, model any, ids []uint) (map[uint]sumRow, error) {
	var rows []sumRow
	q := db.Model(model).
		Select("material_type_id, COALESCE(SUM(boxes_count), 0) AS boxes, COALESCE(SUM(boxes_count * units_per_box), 0) AS units").
		Group("material_type_id")
	if ids != nil {
		q = q.Where("material_type_id IN ?", ids)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]sumRow, len(rows))
	for _, r := range rows {
		out[r.MaterialTypeID] = r
	}
	return out, nil
}

// Calculate: verilen tipler için iki gruplu toplam sorgusuyla stok hesaplar; giriş/çıkış yoksa 0
func Calculate(db *gorm.DB, types []models.MaterialType) ([]StockRow, error) {
	result := make([]StockRow, 0, len(types))
	if len(types) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
	}

	in, err := sums(db, &models.MaterialEntry{}, ids)
	if err != nil {
		return nil, err
	}
	out, err := sums(db, &models.MaterialShipment{}, ids)
	if err != nil {
		return nil, err
	}

	for _, t := range types {
		i, o := in[t.ID], out[t.ID]
		result = append(result, StockRow{
			ID:         t.ID,
			Name:       t.Name,
			Code:       t.Code,
			InBoxes:    i.Boxes,
			OutBoxes:   o.Boxes,
			StockBoxes: i.Boxes - o.Boxes,
			InUnits:    i.Units,
			OutUnits:   o.Units,
			StockUnits: i.Units - o.Units,
		})
	}
	return result, nil
}

// ActiveStock: aktif malzeme tipleri ada göre sıralı
func ActiveStock(db *gorm.DB) ([]StockRow, error) {
	var types []models.MaterialType
	if err := db.Where("is_active = ?", true).Order("name").Find(&types).Error; err != nil {
		return nil, err
	}
	return Calculate(db, types)
}
