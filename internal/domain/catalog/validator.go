package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// DefaultMaxDepth límite de profundidad para cualquier recorrido del árbol.
const DefaultMaxDepth = 1024

// ImportItem unidad propuesta dentro de un lote de importación.
type ImportItem struct {
	ID       string
	Name     string
	Type     entity.UnitType
	ParentID *string
	Price    *int64
}

// Action clasificación de un ítem aceptado.
type Action string

const (
	ActionInsert  Action = "INSERT"
	ActionReplace Action = "REPLACE"
)

// ClassifiedUnit ítem validado, listo para persistir. Previous es el estado anterior en REPLACE.
type ClassifiedUnit struct {
	Action   Action
	Unit     entity.Unit
	Previous *entity.Unit
}

// BatchValidator valida y clasifica un lote completo contra el estado persistido y el propio lote.
// Orden fijo de reglas: estructura, resolución de padres, consistencia de tipo, aciclicidad.
type BatchValidator struct {
	units    repository.UnitReader
	maxDepth int
}

// NewBatchValidator construye el validador. maxDepth <= 0 usa DefaultMaxDepth.
func NewBatchValidator(units repository.UnitReader, maxDepth int) *BatchValidator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &BatchValidator{units: units, maxDepth: maxDepth}
}

// Validate devuelve los ítems clasificados en orden de resolución (todo padre antes que sus hijos)
// con date como nueva fecha de cada unidad. Cualquier regla incumplida rechaza el lote entero.
func (v *BatchValidator) Validate(ctx context.Context, items []ImportItem, date time.Time) ([]ClassifiedUnit, error) {
	batch := make(map[string]ImportItem, len(items))
	for _, it := range items {
		if _, dup := batch[it.ID]; dup {
			return nil, domain.NewValidationError(domain.KindDuplicateID, it.ID, "id repetido en el lote")
		}
		batch[it.ID] = it
	}
	for _, it := range items {
		if err := checkFields(it); err != nil {
			return nil, err
		}
	}

	r := &resolver{
		units:     v.units,
		batch:     batch,
		state:     make(map[string]resolveState, len(items)),
		persisted: make(map[string]*entity.Unit, len(items)),
		acyclic:   make(map[string]bool, len(items)),
		maxDepth:  v.maxDepth,
	}
	for _, it := range items {
		if err := r.resolve(ctx, it.ID, 0); err != nil {
			return nil, err
		}
	}

	out := make([]ClassifiedUnit, 0, len(r.order))
	for _, id := range r.order {
		it := batch[id]
		prev, err := r.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		cu := ClassifiedUnit{Action: ActionInsert}
		if prev != nil {
			if prev.Type != it.Type {
				return nil, domain.NewValidationError(domain.KindTypeMismatch, id,
					"el tipo no puede cambiar de %s a %s", prev.Type, it.Type)
			}
			cu.Action = ActionReplace
			cu.Previous = prev
		}
		cu.Unit = entity.Unit{
			ID:       it.ID,
			Name:     it.Name,
			Type:     it.Type,
			ParentID: it.ParentID,
			Price:    it.Price,
			Date:     date,
		}.Clone()
		out = append(out, cu)
	}

	for _, id := range r.order {
		if err := r.checkAncestry(ctx, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// checkFields reglas por campo que no dependen del resto del lote.
func checkFields(it ImportItem) error {
	switch {
	case it.ID == "":
		return domain.NewValidationError(domain.KindInvalidUnit, "", "id vacío")
	case it.Name == "":
		return domain.NewValidationError(domain.KindInvalidUnit, it.ID, "name vacío")
	case !it.Type.Valid():
		return domain.NewValidationError(domain.KindInvalidUnit, it.ID, "tipo desconocido %q", it.Type)
	case it.Price != nil && *it.Price < 0:
		return domain.NewValidationError(domain.KindInvalidUnit, it.ID, "precio negativo")
	case it.Type == entity.UnitTypeOffer && it.Price == nil:
		return domain.NewValidationError(domain.KindInvalidUnit, it.ID, "OFFER requiere precio")
	case it.Type == entity.UnitTypeCategory && it.Price != nil:
		return domain.NewValidationError(domain.KindInvalidUnit, it.ID, "el precio de una CATEGORY es derivado")
	}
	return nil
}

type resolveState int

const (
	stateVisiting resolveState = iota + 1
	stateResolved
)

// resolver estado de una validación: memo de ítems resueltos y caché de lecturas persistidas.
type resolver struct {
	units     repository.UnitReader
	batch     map[string]ImportItem
	state     map[string]resolveState
	persisted map[string]*entity.Unit // nil = consultado y no existe
	acyclic   map[string]bool
	order     []string
	maxDepth  int
}

func (r *resolver) lookup(ctx context.Context, id string) (*entity.Unit, error) {
	if u, ok := r.persisted[id]; ok {
		return u, nil
	}
	u, err := r.units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.persisted[id] = u
	return u, nil
}

// resolve valida el padre de id. Si el padre viene más adelante en el lote se resuelve primero
// (referencia hacia adelante). Volver a un id del camino actual es un ciclo.
func (r *resolver) resolve(ctx context.Context, id string, depth int) error {
	switch r.state[id] {
	case stateResolved:
		return nil
	case stateVisiting:
		return domain.NewValidationError(domain.KindCycleDetected, id, "la cadena de padres vuelve a %s", id)
	}
	if depth > r.maxDepth {
		return domain.NewValidationError(domain.KindCycleDetected, id, "profundidad máxima %d superada", r.maxDepth)
	}
	r.state[id] = stateVisiting

	it := r.batch[id]
	if it.ParentID != nil {
		parentID := *it.ParentID
		if parent, inBatch := r.batch[parentID]; inBatch {
			if err := r.resolve(ctx, parentID, depth+1); err != nil {
				return err
			}
			if parent.Type != entity.UnitTypeCategory {
				return domain.NewValidationError(domain.KindParentNotCategory, id, "el padre %s es %s", parentID, parent.Type)
			}
		} else {
			parent, err := r.lookup(ctx, parentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return domain.NewValidationError(domain.KindUnknownParent, id, "no existe el padre %s", parentID)
			}
			if !parent.IsCategory() {
				return domain.NewValidationError(domain.KindParentNotCategory, id, "el padre %s es %s", parentID, parent.Type)
			}
		}
	}

	r.state[id] = stateResolved
	r.order = append(r.order, id)
	return nil
}

// effectiveParent padre de id tras aplicar el lote: el del ítem si está en el lote, si no el persistido.
func (r *resolver) effectiveParent(ctx context.Context, id string) (*string, error) {
	if it, ok := r.batch[id]; ok {
		return it.ParentID, nil
	}
	u, err := r.lookup(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return u.ParentID, nil
}

// checkAncestry recorre la cadena de ancestros efectiva de id hasta una raíz.
// Detecta ciclos que mezclan ítems del lote con unidades persistidas
// (p. ej. mover una categoría debajo de su propio descendiente).
func (r *resolver) checkAncestry(ctx context.Context, id string) error {
	onPath := make(map[string]bool)
	var walked []string
	cur := id
	for depth := 0; !r.acyclic[cur]; depth++ {
		if onPath[cur] {
			return domain.NewValidationError(domain.KindCycleDetected, id, "la cadena de ancestros vuelve a %s", cur)
		}
		if depth > r.maxDepth {
			return domain.NewValidationError(domain.KindCycleDetected, id, "profundidad máxima %d superada", r.maxDepth)
		}
		onPath[cur] = true
		walked = append(walked, cur)

		parentID, err := r.effectiveParent(ctx, cur)
		if err != nil {
			return err
		}
		if parentID == nil {
			break
		}
		cur = *parentID
	}
	for _, w := range walked {
		r.acyclic[w] = true
	}
	return nil
}
