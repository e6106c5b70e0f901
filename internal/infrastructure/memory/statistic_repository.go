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

var _ repository.StatisticRepository = (*statRepo)(nil)

type statRepo struct {
	tx *txState
}

func (r *statRepo) Create(_ context.Context, stat *entity.UnitStatistic) error {
	if r.tx.readOnly {
		return ErrReadOnly
	}
	if _, ok := r.tx.state.units[stat.UnitID]; !ok {
		return fmt.Errorf("create statistic %s: la unidad no existe", stat.UnitID)
	}
	list := r.tx.state.stats[stat.UnitID]
	rec := cloneStatistic(*stat)
	for i := range list {
		if list[i].Date.Equal(rec.Date) {
			return fmt.Errorf("create statistic %s en %s: %w", stat.UnitID, rec.Date.Format(time.RFC3339Nano), domain.ErrConflict)
		}
	}
	list = append(list, rec)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	r.tx.state.stats[stat.UnitID] = list
	return nil
}

func (r *statRepo) ListByUnit(_ context.Context, unitID string, from, to *time.Time) ([]*entity.UnitStatistic, error) {
	var out []*entity.UnitStatistic
	for _, s := range r.tx.state.stats[unitID] {
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		c := cloneStatistic(s)
		out = append(out, &c)
	}
	return out, nil
}
