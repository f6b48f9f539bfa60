package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolChangesTotal: kaydedilen takım değişimi sayısı (tezgah kısa adına göre)
	ToolChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uretim",
			Name:      "tool_changes_total",
			Help:      "Total number of recorded tool-change batches",
		},
		[]string{"machine"},
	)

	ProductionRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uretim",
			Name:      "daily_production_records_total",
			Help:      "Total number of daily production rows inserted",
		},
		[]string{"machine"},
	)

	ProducedUnitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uretim",
			Name:      "produced_units_total",
			Help:      "Sum of total_count over inserted daily production rows",
		},
		[]string{"machine"},
	)

	WorkSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "uretim",
			Name:      "work_sessions_total",
			Help:      "Total number of recorded work sessions",
		},
	)

	// MaterialBoxesTotal: direction = in | out
	MaterialBoxesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uretim",
			Name:      "material_boxes_total",
			Help:      "Boxes moved in or out of the material store",
		},
		[]string{"material", "direction"},
	)
)
