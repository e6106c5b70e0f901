package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// UnitNode unidad materializada junto con su subárbol.
// Children es nil para OFFER y no nil (posiblemente vacío) para CATEGORY.
type UnitNode struct {
	Unit     entity.Unit
	Children []*UnitNode
}

// Size número de nodos del subárbol, incluido el propio.
func (n *UnitNode) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// PriceAggregator recalcula de abajo hacia arriba el precio derivado de las categorías.
// Un mismo algoritmo sirve para persistir tras un lote (con PriceWriter) y para lecturas (sin él).
type PriceAggregator struct {
	units    repository.UnitReader
	maxDepth int
}

// NewPriceAggregator construye el motor. maxDepth <= 0 usa DefaultMaxDepth.
func NewPriceAggregator(units repository.UnitReader, maxDepth int) *PriceAggregator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PriceAggregator{units: units, maxDepth: maxDepth}
}

// FindRoots sube por parentId desde cada id hasta su raíz. Devuelve raíces sin repetir,
// en el orden en que se descubren. Los ids inexistentes se ignoran.
func (a *PriceAggregator) FindRoots(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	var roots []string
	for _, id := range ids {
		root, err := a.rootOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}
	return roots, nil
}

func (a *PriceAggregator) rootOf(ctx context.Context, id string) (string, error) {
	visited := make(map[string]bool)
	cur := id
	for depth := 0; ; depth++ {
		if visited[cur] {
			return "", domain.NewValidationError(domain.KindCycleDetected, id, "la cadena de padres vuelve a %s", cur)
		}
		if depth > a.maxDepth {
			return "", domain.NewValidationError(domain.KindCycleDetected, id, "profundidad máxima %d superada", a.maxDepth)
		}
		visited[cur] = true

		u, err := a.units.GetByID(ctx, cur)
		if err != nil {
			return "", err
		}
		if u == nil {
			if cur == id {
				return "", nil
			}
			// Padre borrado por otra tx entre lecturas.
			return "", domain.NewValidationError(domain.KindUnknownParent, id, "el padre %s ya no existe", cur)
		}
		if u.ParentID == nil {
			return u.ID, nil
		}
		cur = *u.ParentID
	}
}

// Recalculate modo con persistencia: recorre el subárbol de rootID en post-orden y escribe con w
// el precio de cada categoría cuyo valor cambió.
func (a *PriceAggregator) Recalculate(ctx context.Context, rootID string, w repository.PriceWriter) (*UnitNode, error) {
	root, err := a.units.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("raíz %s: %w", rootID, domain.ErrNotFound)
	}
	return a.build(ctx, root.Clone(), w, make(map[string]bool), 0)
}

// Materialize modo sin persistencia: arma el subárbol de unit con precios recién calculados.
func (a *PriceAggregator) Materialize(ctx context.Context, unit *entity.Unit) (*UnitNode, error) {
	return a.build(ctx, unit.Clone(), nil, make(map[string]bool), 0)
}

func (a *PriceAggregator) build(ctx context.Context, u entity.Unit, w repository.PriceWriter, path map[string]bool, depth int) (*UnitNode, error) {
	if path[u.ID] {
		return nil, domain.NewValidationError(domain.KindCycleDetected, u.ID, "el subárbol vuelve a %s", u.ID)
	}
	if depth > a.maxDepth {
		return nil, domain.NewValidationError(domain.KindCycleDetected, u.ID, "profundidad máxima %d superada", a.maxDepth)
	}
	node := &UnitNode{Unit: u}
	if !u.IsCategory() {
		return node, nil
	}

	path[u.ID] = true
	defer delete(path, u.ID)

	children, err := a.units.ListByParent(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	node.Children = make([]*UnitNode, 0, len(children))
	var sum int64
	for _, c := range children {
		child, err := a.build(ctx, c.Clone(), w, path, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		if p := child.Unit.Price; p != nil {
			if *p > math.MaxInt64-sum {
				return nil, domain.NewValidationError(domain.KindInvalidUnit, u.ID, "la suma de precios de los hijos desborda int64")
			}
			sum += *p
		}
	}

	node.Unit.Price = DerivedPrice(sum)
	if w != nil && !samePrice(u.Price, node.Unit.Price) {
		if err := w.UpdatePrice(ctx, u.ID, node.Unit.Price); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// DerivedPrice precio de una categoría a partir de la suma de sus hijos.
// Una suma igual a cero se trata igual que "sin ofertas con precio": nil.
func DerivedPrice(sum int64) *int64 {
	if sum > 0 {
		return &sum
	}
	return nil
}

func samePrice(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
