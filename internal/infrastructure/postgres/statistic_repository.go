package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.StatisticRepository = (*StatisticRepo)(nil)

// StatisticRepo historial de unidades sobre PostgreSQL.
type StatisticRepo struct {
	q Querier
}

// NewStatisticRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStatisticRepository(q Querier) *StatisticRepo {
	return &StatisticRepo{q: q}
}

// Create agrega un registro. Los registros nunca se modifican: repetir (unit_id, date)
// devuelve domain.ErrConflict.
func (r *StatisticRepo) Create(ctx context.Context, s *entity.UnitStatistic) error {
	query := `
		INSERT INTO statistics (unit_id, date, name, type, parent_id, price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.UnitID, s.Date, s.Name, string(s.Type), s.ParentID, s.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert statistic %s: %w", s.UnitID, domain.ErrConflict)
		}
		return fmt.Errorf("insert statistic %s: %w", s.UnitID, err)
	}
	return nil
}

// ListByUnit registros de unitID con fecha en [from, to], ordenados por fecha. Límites nil = abierto.
func (r *StatisticRepo) ListByUnit(ctx context.Context, unitID string, from, to *time.Time) ([]*entity.UnitStatistic, error) {
	query := `
		SELECT unit_id, date, name, type, parent_id, price
		FROM statistics
		WHERE unit_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date`
	rows, err := r.q.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close()
	var list []*entity.UnitStatistic
	for rows.Next() {
		var s entity.UnitStatistic
		var unitType string
		if err := rows.Scan(&s.UnitID, &s.Date, &s.Name, &unitType, &s.ParentID, &s.Price); err != nil {
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		s.Type = entity.UnitType(unitType)
		s.Date = s.Date.UTC()
		list = append(list, &s)
	}
	return list, rows.Err()
}
