// Package memory almacén transaccional en memoria para STORAGE_DRIVER=memory y para tests.
// Las transacciones de escritura se serializan y trabajan sobre una copia del estado,
// que reemplaza al original solo si la función termina sin error.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ appcatalog.TxRunner = (*Store)(nil)

// ErrReadOnly escritura dentro de RunReadOnly.
var ErrReadOnly = errors.New("memory: transacción de solo lectura")

type state struct {
	units map[string]entity.Unit
	stats map[string][]entity.UnitStatistic // por UnitID, ordenado por Date
}

func newState() state {
	return state{
		units: make(map[string]entity.Unit),
		stats: make(map[string][]entity.UnitStatistic),
	}
}

func (s state) clone() state {
	c := state{
		units: make(map[string]entity.Unit, len(s.units)),
		stats: make(map[string][]entity.UnitStatistic, len(s.stats)),
	}
	for id, u := range s.units {
		c.units[id] = u.Clone()
	}
	for id, list := range s.stats {
		cp := make([]entity.UnitStatistic, len(list))
		for i, st := range list {
			cp[i] = cloneStatistic(st)
		}
		c.stats[id] = cp
	}
	return c
}

func cloneStatistic(s entity.UnitStatistic) entity.UnitStatistic {
	if s.ParentID != nil {
		p := *s.ParentID
		s.ParentID = &p
	}
	if s.Price != nil {
		p := *s.Price
		s.Price = &p
	}
	return s
}

// Store implementa catalog.TxRunner sobre mapas protegidos por un RWMutex.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn sobre una copia del estado y la confirma si fn no devuelve error
// y el contexto sigue vigente.
func (s *Store) Run(ctx context.Context, fn func(
	units repository.UnitRepository,
	stats repository.StatisticRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	tx := &txState{state: &work}
	if err := fn(&unitRepo{tx: tx}, &statRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// RunReadOnly ejecuta fn con el lock compartido; ningún lote puede confirmarse mientras tanto.
func (s *Store) RunReadOnly(ctx context.Context, fn func(
	units repository.UnitRepository,
	stats repository.StatisticRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &txState{state: &s.state, readOnly: true}
	return fn(&unitRepo{tx: tx}, &statRepo{tx: tx})
}

// Snapshot copia ordenada del estado confirmado.
type Snapshot struct {
	Units      []entity.Unit
	Statistics []entity.UnitStatistic
}

// Snapshot devuelve el estado confirmado (unidades por ID, estadísticas por unidad y fecha).
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.state.clone()
	snap := Snapshot{}
	for _, u := range c.units {
		snap.Units = append(snap.Units, u)
	}
	sort.Slice(snap.Units, func(i, j int) bool { return snap.Units[i].ID < snap.Units[j].ID })

	ids := make([]string, 0, len(c.stats))
	for id := range c.stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		snap.Statistics = append(snap.Statistics, c.stats[id]...)
	}
	return snap
}

type txState struct {
	state    *state
	readOnly bool
}
