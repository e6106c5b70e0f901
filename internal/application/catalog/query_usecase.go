package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// SalesWindow ventana hacia atrás de GetSales.
const SalesWindow = 24 * time.Hour

// QueryUseCase consultas de solo lectura sobre el árbol y su historial.
type QueryUseCase struct {
	txRunner TxRunner
	maxDepth int
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(txRunner TxRunner, maxDepth int) *QueryUseCase {
	return &QueryUseCase{txRunner: txRunner, maxDepth: maxDepth}
}

// GetUnitTree unidad con su subárbol completo y precios de categoría recién calculados (sin persistir).
func (uc *QueryUseCase) GetUnitTree(ctx context.Context, id string) (*dto.UnitResponse, error) {
	var node *catalog.UnitNode
	err := uc.txRunner.RunReadOnly(ctx, func(
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
		node, err = catalog.NewPriceAggregator(units, uc.maxDepth).Materialize(ctx, unit)
		return err
	})
	if err != nil {
		return nil, err
	}
	treeSize.Observe(float64(node.Size()))
	out := toUnitResponse(node)
	return &out, nil
}

// GetSales ofertas cuya fecha cae en [date − 24h, date], ambos extremos incluidos.
func (uc *QueryUseCase) GetSales(ctx context.Context, date time.Time) (*dto.UnitStatisticListResponse, error) {
	date = date.UTC()
	var list []*entity.Unit
	err := uc.txRunner.RunReadOnly(ctx, func(
		units repository.UnitRepository,
		_ repository.StatisticRepository,
	) error {
		var err error
		list, err = units.ListByTypeAndDateRange(ctx, entity.UnitTypeOffer, date.Add(-SalesWindow), date)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UnitStatisticResponse, 0, len(list))
	for _, u := range list {
		items = append(items, toUnitStatisticResponseFromUnit(u))
	}
	return &dto.UnitStatisticListResponse{Items: items}, nil
}

// GetUnitStatistics historial de id en [start, end]; cualquiera de los límites puede omitirse.
// end < start es un error de validación. Una unidad inexistente devuelve lista vacía.
func (uc *QueryUseCase) GetUnitStatistics(ctx context.Context, id string, start, end *time.Time) (*dto.UnitStatisticListResponse, error) {
	if start != nil && end != nil && end.Before(*start) {
		validationFailuresTotal.WithLabelValues(string(domain.KindInvalidDateRange)).Inc()
		return nil, domain.NewValidationError(domain.KindInvalidDateRange, id, "dateEnd anterior a dateStart")
	}
	var list []*entity.UnitStatistic
	err := uc.txRunner.RunReadOnly(ctx, func(
		_ repository.UnitRepository,
		stats repository.StatisticRepository,
	) error {
		var err error
		list, err = stats.ListByUnit(ctx, id, utcPtr(start), utcPtr(end))
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UnitStatisticResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toUnitStatisticResponse(s))
	}
	return &dto.UnitStatisticListResponse{Items: items}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
