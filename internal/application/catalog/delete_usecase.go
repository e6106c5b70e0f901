package catalog

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// DeleteUseCase elimina una unidad con todo su subárbol y su historial.
type DeleteUseCase struct {
	txRunner TxRunner
	maxDepth int
	log      *logger.Logger
}

// NewDeleteUseCase construye el caso de uso.
func NewDeleteUseCase(txRunner TxRunner, maxDepth int, log *logger.Logger) *DeleteUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DeleteUseCase{txRunner: txRunner, maxDepth: maxDepth, log: log.WithComponent("delete")}
}

// Delete devuelve domain.ErrNotFound si id no existe. Tras borrar recalcula (y persiste)
// el precio de los ancestros que quedan.
func (uc *DeleteUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		_ repository.StatisticRepository,
	) error {
		unit, err := units.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.ErrNotFound
		}

		agg := catalog.NewPriceAggregator(units, uc.maxDepth)
		var roots []string
		if unit.ParentID != nil {
			if roots, err = lockRoots(ctx, agg, units, []string{*unit.ParentID}, nil); err != nil {
				return err
			}
		}

		deleted, err := units.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		for _, root := range roots {
			if _, err := agg.Recalculate(ctx, root, units); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("unit_id", id).Msg("unidad eliminada con su subárbol")
	return nil
}
