package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ImportUseCase importa lotes de unidades de forma atómica:
// validación → upsert → agregación de precios por raíz → estadísticas, todo en una tx.
type ImportUseCase struct {
	txRunner TxRunner
	recorder *StatisticsRecorder
	maxDepth int
	log      *logger.Logger
}

// NewImportUseCase construye el caso de uso. maxDepth <= 0 usa el límite por defecto.
func NewImportUseCase(txRunner TxRunner, recorder *StatisticsRecorder, maxDepth int, log *logger.Logger) *ImportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportUseCase{
		txRunner: txRunner,
		recorder: recorder,
		maxDepth: maxDepth,
		log:      log.WithComponent("import"),
	}
}

// Import adapta el request HTTP/CLI al lote de dominio.
func (uc *ImportUseCase) Import(ctx context.Context, in dto.UnitImportRequest) (*dto.ImportResult, error) {
	if in.UpdateDate == nil {
		return nil, domain.NewValidationError(domain.KindInvalidUnit, "", "updateDate requerido")
	}
	items := make([]catalog.ImportItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, catalog.ImportItem{
			ID:       it.ID,
			Name:     it.Name,
			Type:     entity.UnitType(it.Type),
			ParentID: it.ParentID,
			Price:    it.Price,
		})
	}
	return uc.ImportBatch(ctx, items, in.UpdateDate.Time())
}

// ImportBatch valida y confirma el lote completo o no aplica nada.
func (uc *ImportUseCase) ImportBatch(ctx context.Context, items []catalog.ImportItem, date time.Time) (*dto.ImportResult, error) {
	start := time.Now()
	result := &dto.ImportResult{BatchID: uuid.New().String()}
	date = date.UTC()

	err := uc.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		stats repository.StatisticRepository,
	) error {
		classified, err := catalog.NewBatchValidator(units, uc.maxDepth).Validate(ctx, items, date)
		if err != nil {
			return err
		}

		touched := make([]string, 0, len(classified))
		var movedRoots []string
		for _, cu := range classified {
			u := cu.Unit
			if err := units.Upsert(ctx, &u); err != nil {
				return err
			}
			touched = append(touched, u.ID)
			if cu.Action == catalog.ActionInsert {
				result.Inserted++
				continue
			}
			result.Replaced++
			// Al mover una unidad también cambia el precio de su rama anterior.
			prev := cu.Previous.ParentID
			switch {
			case prev == nil && u.ParentID != nil:
				movedRoots = append(movedRoots, u.ID)
			case prev != nil && (u.ParentID == nil || *u.ParentID != *prev):
				touched = append(touched, *prev)
			}
		}

		agg := catalog.NewPriceAggregator(units, uc.maxDepth)
		roots, err := lockRoots(ctx, agg, units, touched, movedRoots)
		if err != nil {
			return err
		}
		for _, root := range roots {
			if _, err := agg.Recalculate(ctx, root, units); err != nil {
				return err
			}
		}
		result.Roots = len(roots)

		return uc.recorder.Record(ctx, units, stats, classified)
	})
	importDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, domain.ErrNotFound) {
		// Un faltante a mitad del lote es estado concurrente, no un recurso pedido por el cliente.
		err = fmt.Errorf("lote %s: %v", result.BatchID, err)
	}
	if err != nil {
		importBatchesTotal.WithLabelValues("rejected").Inc()
		if kind, ok := domain.ValidationKindOf(err); ok {
			validationFailuresTotal.WithLabelValues(string(kind)).Inc()
			uc.log.Warn().Err(err).
				Str("batch_id", result.BatchID).
				Str("kind", string(kind)).
				Int("items", len(items)).
				Msg("lote rechazado")
		} else {
			uc.log.Error().Err(err).
				Str("batch_id", result.BatchID).
				Int("items", len(items)).
				Msg("lote fallido")
		}
		return nil, err
	}

	importBatchesTotal.WithLabelValues("accepted").Inc()
	importUnitsTotal.WithLabelValues(string(catalog.ActionInsert)).Add(float64(result.Inserted))
	importUnitsTotal.WithLabelValues(string(catalog.ActionReplace)).Add(float64(result.Replaced))
	uc.log.Info().
		Str("batch_id", result.BatchID).
		Time("update_date", date).
		Int("inserted", result.Inserted).
		Int("replaced", result.Replaced).
		Int("roots", result.Roots).
		Dur("elapsed", time.Since(start)).
		Msg("lote importado")
	return result, nil
}

// maxLockRounds cota de rondas de lockRoots antes de abortar el lote.
const maxLockRounds = 16

// lockRoots bloquea las raíces de ids más las unidades de pinned y devuelve las raíces de ids.
// Con READ COMMITTED otra tx puede mover una rama mientras esta espera el bloqueo, así que tras
// cada ronda vuelve a buscar las raíces y bloquea las nuevas hasta que el conjunto no cambia.
// Dentro de cada ronda el orden es estable.
func lockRoots(
	ctx context.Context,
	agg *catalog.PriceAggregator,
	units repository.UnitRepository,
	ids, pinned []string,
) ([]string, error) {
	locked := make(map[string]bool)
	for round := 0; ; round++ {
		roots, err := agg.FindRoots(ctx, ids)
		if err != nil {
			return nil, err
		}
		var fresh []string
		for _, id := range append(append([]string(nil), roots...), pinned...) {
			if !locked[id] {
				locked[id] = true
				fresh = append(fresh, id)
			}
		}
		if len(fresh) == 0 {
			return roots, nil
		}
		if round >= maxLockRounds {
			return nil, fmt.Errorf("las raíces siguen cambiando tras %d rondas de bloqueo", maxLockRounds)
		}
		sort.Strings(fresh)
		if err := units.LockForUpdate(ctx, fresh); err != nil {
			return nil, err
		}
		lockRoundsTotal.Inc()
	}
}
