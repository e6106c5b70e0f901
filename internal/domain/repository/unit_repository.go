package repository

import (
	"context"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// UnitReader lecturas mínimas que necesitan el validador y el motor de agregación.
type UnitReader interface {
	// GetByID devuelve nil, nil si la unidad no existe.
	GetByID(ctx context.Context, id string) (*entity.Unit, error)
	// ListByParent devuelve los hijos directos ordenados por ID.
	ListByParent(ctx context.Context, parentID string) ([]*entity.Unit, error)
}

// PriceWriter persiste el precio derivado de una categoría (modo con persistencia de la agregación).
type PriceWriter interface {
	UpdatePrice(ctx context.Context, id string, price *int64) error
}

// UnitRepository define el puerto de persistencia para el árbol de unidades (DIP).
// Todas las operaciones se ejecutan dentro de la transacción que entrega el TxRunner.
type UnitRepository interface {
	UnitReader
	PriceWriter

	// ListByTypeAndDateRange unidades del tipo dado con from <= date <= to.
	ListByTypeAndDateRange(ctx context.Context, unitType entity.UnitType, from, to time.Time) ([]*entity.Unit, error)

	// Upsert inserta o reemplaza todos los campos de la unidad.
	Upsert(ctx context.Context, unit *entity.Unit) error

	// LockForUpdate bloquea las filas indicadas hasta el fin de la transacción.
	// Serializa lotes que recalculan la misma raíz.
	LockForUpdate(ctx context.Context, ids []string) error

	// Delete elimina la unidad, su subárbol y las estadísticas de todas ellas.
	// Devuelve false si la unidad no existía.
	Delete(ctx context.Context, id string) (bool, error)
}
