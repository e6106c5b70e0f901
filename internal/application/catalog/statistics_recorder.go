package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// StatisticsRecorder agrega un registro histórico por cada unidad insertada o reemplazada en un lote.
// Los cambios de precio producidos solo por la agregación de ancestros no se registran.
type StatisticsRecorder struct{}

// NewStatisticsRecorder construye el registrador.
func NewStatisticsRecorder() *StatisticsRecorder {
	return &StatisticsRecorder{}
}

// Record debe llamarse después de la agregación, dentro de la misma tx: la instantánea lleva
// los valores finales del lote (incluido el precio derivado de las categorías).
func (r *StatisticsRecorder) Record(
	ctx context.Context,
	units repository.UnitReader,
	stats repository.StatisticRepository,
	classified []catalog.ClassifiedUnit,
) error {
	for _, cu := range classified {
		current, err := units.GetByID(ctx, cu.Unit.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("estadística de %s: la unidad desapareció dentro del lote", cu.Unit.ID)
		}
		if err := stats.Create(ctx, entity.NewUnitStatistic(*current)); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.NewValidationError(domain.KindDuplicateRecord, cu.Unit.ID,
					"ya existe una estadística con fecha %s", current.Date.Format(time.RFC3339Nano))
			}
			return err
		}
	}
	return nil
}
