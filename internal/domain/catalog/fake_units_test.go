package catalog_test

import (
	"context"
	"sort"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// fakeUnits lector/escritor en memoria para probar el dominio sin infraestructura.
type fakeUnits struct {
	units   map[string]entity.Unit
	writes  map[string]*int64
	lookups int
}

func newFakeUnits(units ...entity.Unit) *fakeUnits {
	f := &fakeUnits{units: make(map[string]entity.Unit), writes: make(map[string]*int64)}
	for _, u := range units {
		f.units[u.ID] = u
	}
	return f
}

func (f *fakeUnits) GetByID(_ context.Context, id string) (*entity.Unit, error) {
	f.lookups++
	u, ok := f.units[id]
	if !ok {
		return nil, nil
	}
	c := u.Clone()
	return &c, nil
}

func (f *fakeUnits) ListByParent(_ context.Context, parentID string) ([]*entity.Unit, error) {
	var out []*entity.Unit
	for _, u := range f.units {
		if u.ParentID != nil && *u.ParentID == parentID {
			c := u.Clone()
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUnits) UpdatePrice(_ context.Context, id string, price *int64) error {
	u := f.units[id]
	u.Price = price
	f.units[id] = u
	f.writes[id] = price
	return nil
}

func ptr[T any](v T) *T { return &v }

func category(id string, parentID *string) entity.Unit {
	return entity.Unit{ID: id, Name: id, Type: entity.UnitTypeCategory, ParentID: parentID}
}

func offer(id string, parentID *string, price int64) entity.Unit {
	return entity.Unit{ID: id, Name: id, Type: entity.UnitTypeOffer, ParentID: parentID, Price: ptr(price)}
}
