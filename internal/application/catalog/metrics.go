package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_batches_total",
		Help: "Lotes de importación procesados por resultado",
	}, []string{"result"})

	importUnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_units_total",
		Help: "Unidades persistidas por acción (INSERT/REPLACE)",
	}, []string{"action"})

	validationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_validation_failures_total",
		Help: "Peticiones rechazadas por tipo de validación",
	}, []string{"kind"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_import_duration_seconds",
		Help:    "Duración de un lote completo (validación, escritura, agregación y estadísticas)",
		Buckets: prometheus.DefBuckets,
	})

	lockRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_root_lock_rounds_total",
		Help: "Rondas de bloqueo de raíces; más de una por lote indica movimientos concurrentes",
	})

	treeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_tree_query_size",
		Help:    "Nodos materializados por consulta de subárbol",
		Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
	})
)
