package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo implementación del puerto UnitRepository sobre PostgreSQL (usable con pool o tx).
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de persistencia para unidades. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = `id, name, type, parent_id, price, date`

func scanUnit(row pgx.Row) (*entity.Unit, error) {
	var u entity.Unit
	var unitType string
	if err := row.Scan(&u.ID, &u.Name, &unitType, &u.ParentID, &u.Price, &u.Date); err != nil {
		return nil, err
	}
	u.Type = entity.UnitType(unitType)
	u.Date = u.Date.UTC()
	return &u, nil
}

func (r *UnitRepo) list(ctx context.Context, what, query string, args ...any) ([]*entity.Unit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()
	var list []*entity.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetByID obtiene una unidad por ID. Devuelve (nil, nil) si no existe.
func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	u, err := scanUnit(r.q.QueryRow(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

// ListByParent hijos directos ordenados por ID.
func (r *UnitRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Unit, error) {
	return r.list(ctx, "list units by parent",
		`SELECT `+unitColumns+` FROM units WHERE parent_id = $1 ORDER BY id`, parentID)
}

// ListByTypeAndDateRange unidades de un tipo con fecha en [from, to].
func (r *UnitRepo) ListByTypeAndDateRange(ctx context.Context, unitType entity.UnitType, from, to time.Time) ([]*entity.Unit, error) {
	return r.list(ctx, "list units by date",
		`SELECT `+unitColumns+` FROM units
		 WHERE type = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date, id`, string(unitType), from, to)
}

// Upsert inserta o reemplaza la unidad. El tipo nunca se sobrescribe.
func (r *UnitRepo) Upsert(ctx context.Context, u *entity.Unit) error {
	query := `
		INSERT INTO units (id, name, type, parent_id, price, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			parent_id = EXCLUDED.parent_id,
			price = EXCLUDED.price,
			date = EXCLUDED.date`
	_, err := r.q.Exec(ctx, query, u.ID, u.Name, string(u.Type), u.ParentID, u.Price, u.Date)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError(domain.KindUnknownParent, u.ID, "el padre ya no existe")
		}
		return fmt.Errorf("upsert unit: %w", err)
	}
	return nil
}

// UpdatePrice escribe el precio derivado de una categoría.
func (r *UnitRepo) UpdatePrice(ctx context.Context, id string, price *int64) error {
	cmd, err := r.q.Exec(ctx, `UPDATE units SET price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("update unit price: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update unit price %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// LockForUpdate bloquea las filas indicadas hasta el fin de la tx. FOR NO KEY UPDATE no choca
// con los KEY SHARE que toman las llaves foráneas al insertar hijos.
func (r *UnitRepo) LockForUpdate(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id FROM units WHERE id = ANY($1) ORDER BY id FOR NO KEY UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// Delete elimina la unidad; la llave foránea con ON DELETE CASCADE arrastra el subárbol y las estadísticas.
func (r *UnitRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete unit: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
