package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*unitRepo)(nil)

type unitRepo struct {
	tx *txState
}

func (r *unitRepo) GetByID(_ context.Context, id string) (*entity.Unit, error) {
	u, ok := r.tx.state.units[id]
	if !ok {
		return nil, nil
	}
	c := u.Clone()
	return &c, nil
}

func (r *unitRepo) ListByParent(_ context.Context, parentID string) ([]*entity.Unit, error) {
	var out []*entity.Unit
	for _, u := range r.tx.state.units {
		if u.ParentID != nil && *u.ParentID == parentID {
			c := u.Clone()
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *unitRepo) ListByTypeAndDateRange(_ context.Context, unitType entity.UnitType, from, to time.Time) ([]*entity.Unit, error) {
	var out []*entity.Unit
	for _, u := range r.tx.state.units {
		if u.Type != unitType || u.Date.Before(from) || u.Date.After(to) {
			continue
		}
		c := u.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *unitRepo) Upsert(_ context.Context, unit *entity.Unit) error {
	if r.tx.readOnly {
		return ErrReadOnly
	}
	if unit.ParentID != nil {
		if _, ok := r.tx.state.units[*unit.ParentID]; !ok {
			return domain.NewValidationError(domain.KindUnknownParent, unit.ID, "el padre %s no existe", *unit.ParentID)
		}
	}
	r.tx.state.units[unit.ID] = unit.Clone()
	return nil
}

func (r *unitRepo) UpdatePrice(_ context.Context, id string, price *int64) error {
	if r.tx.readOnly {
		return ErrReadOnly
	}
	u, ok := r.tx.state.units[id]
	if !ok {
		return fmt.Errorf("update price %s: %w", id, domain.ErrNotFound)
	}
	u.Price = nil
	if price != nil {
		p := *price
		u.Price = &p
	}
	r.tx.state.units[id] = u
	return nil
}

// LockForUpdate no hace nada: las transacciones de escritura ya están serializadas.
func (r *unitRepo) LockForUpdate(_ context.Context, _ []string) error {
	if r.tx.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (r *unitRepo) Delete(_ context.Context, id string) (bool, error) {
	if r.tx.readOnly {
		return false, ErrReadOnly
	}
	if _, ok := r.tx.state.units[id]; !ok {
		return false, nil
	}

	// Recolecta el subárbol por niveles; visited evita bucles si el estado estuviera corrupto.
	children := make(map[string][]string)
	for uid, u := range r.tx.state.units {
		if u.ParentID != nil {
			children[*u.ParentID] = append(children[*u.ParentID], uid)
		}
	}
	visited := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if !visited[c] {
				visited[c] = true
				queue = append(queue, c)
			}
		}
	}
	for uid := range visited {
		delete(r.tx.state.units, uid)
		delete(r.tx.state.stats, uid)
	}
	return true, nil
}
