package repository

import (
	"context"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// StatisticRepository puerto del historial de unidades (solo inserción).
type StatisticRepository interface {
	// Create agrega un registro. Repetir (UnitID, Date) devuelve domain.ErrConflict; nunca se modifica un registro.
	Create(ctx context.Context, stat *entity.UnitStatistic) error

	// ListByUnit registros de la unidad con from <= date <= to, ordenados por fecha.
	// from/to nil = sin límite por ese lado.
	ListByUnit(ctx context.Context, unitID string, from, to *time.Time) ([]*entity.UnitStatistic, error)
}
