package catalog

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Run: lectura/escritura, Commit si fn devuelve nil y Rollback en cualquier otro caso.
// RunReadOnly: instantánea consistente, nunca observa un lote a medio confirmar.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		units repository.UnitRepository,
		stats repository.StatisticRepository,
	) error) error
	RunReadOnly(ctx context.Context, fn func(
		units repository.UnitRepository,
		stats repository.StatisticRepository,
	) error) error
}
