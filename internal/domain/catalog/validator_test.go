package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

var batchDate = time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC)

func requireKind(t *testing.T, err error, kind domain.ValidationKind) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, ok := domain.ValidationKindOf(err)
	require.True(t, ok, "se esperaba un *domain.ValidationError, se obtuvo %v", err)
	assert.Equal(t, kind, got)
}

func TestValidate_ClasificaInsertYReplace(t *testing.T) {
	units := newFakeUnits(category("c1", nil))
	v := catalog.NewBatchValidator(units, 0)

	out, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "c1", Name: "Renombrada", Type: entity.UnitTypeCategory},
		{ID: "o1", Name: "Oferta", Type: entity.UnitTypeOffer, ParentID: ptr("c1"), Price: ptr(int64(10))},
	}, batchDate)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, catalog.ActionReplace, out[0].Action)
	require.NotNil(t, out[0].Previous)
	assert.Equal(t, "c1", out[0].Previous.Name)
	assert.Equal(t, "Renombrada", out[0].Unit.Name)

	assert.Equal(t, catalog.ActionInsert, out[1].Action)
	assert.Nil(t, out[1].Previous)
	for _, cu := range out {
		assert.True(t, cu.Unit.Date.Equal(batchDate), "todas las unidades llevan la fecha del lote")
	}
}

func TestValidate_ReferenciaHaciaAdelante_PadreAntesQueHijo(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)

	out, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "a", Name: "a", Type: entity.UnitTypeOffer, ParentID: ptr("b"), Price: ptr(int64(1))},
		{ID: "b", Name: "b", Type: entity.UnitTypeCategory, ParentID: ptr("c")},
		{ID: "c", Name: "c", Type: entity.UnitTypeCategory},
	}, batchDate)
	require.NoError(t, err)
	require.Len(t, out, 3)

	ids := []string{out[0].Unit.ID, out[1].Unit.ID, out[2].Unit.ID}
	assert.Equal(t, []string{"c", "b", "a"}, ids, "la salida respeta el orden padre → hijo")
}

func TestValidate_IDDuplicado(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "x", Name: "x", Type: entity.UnitTypeCategory},
		{ID: "x", Name: "x2", Type: entity.UnitTypeCategory},
	}, batchDate)
	requireKind(t, err, domain.KindDuplicateID)
}

func TestValidate_PadreDesconocido(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "o", Name: "o", Type: entity.UnitTypeOffer, ParentID: ptr("nadie"), Price: ptr(int64(1))},
	}, batchDate)
	requireKind(t, err, domain.KindUnknownParent)
}

func TestValidate_PadreOfferPersistido(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(offer("o1", nil, 5)), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "o2", Name: "o2", Type: entity.UnitTypeOffer, ParentID: ptr("o1"), Price: ptr(int64(1))},
	}, batchDate)
	requireKind(t, err, domain.KindParentNotCategory)
}

func TestValidate_PadreOfferEnElLote(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "hijo", Name: "hijo", Type: entity.UnitTypeOffer, ParentID: ptr("padre"), Price: ptr(int64(1))},
		{ID: "padre", Name: "padre", Type: entity.UnitTypeOffer, Price: ptr(int64(1))},
	}, batchDate)
	requireKind(t, err, domain.KindParentNotCategory)
}

func TestValidate_CambioDeTipo(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(category("c1", nil)), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "c1", Name: "c1", Type: entity.UnitTypeOffer, Price: ptr(int64(3))},
	}, batchDate)
	requireKind(t, err, domain.KindTypeMismatch)
}

func TestValidate_CicloDentroDelLote(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "x", Name: "x", Type: entity.UnitTypeCategory, ParentID: ptr("y")},
		{ID: "y", Name: "y", Type: entity.UnitTypeCategory, ParentID: ptr("x")},
	}, batchDate)
	requireKind(t, err, domain.KindCycleDetected)
}

func TestValidate_PadreDeSiMismo(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "x", Name: "x", Type: entity.UnitTypeCategory, ParentID: ptr("x")},
	}, batchDate)
	requireKind(t, err, domain.KindCycleDetected)
}

// Mover una categoría debajo de su propio descendiente persistido también es un ciclo.
func TestValidate_CicloConUnidadesPersistidas(t *testing.T) {
	units := newFakeUnits(
		category("raiz", nil),
		category("hija", ptr("raiz")),
	)
	v := catalog.NewBatchValidator(units, 0)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "raiz", Name: "raiz", Type: entity.UnitTypeCategory, ParentID: ptr("hija")},
	}, batchDate)
	requireKind(t, err, domain.KindCycleDetected)
}

func TestValidate_ProfundidadMaxima(t *testing.T) {
	v := catalog.NewBatchValidator(newFakeUnits(), 2)
	_, err := v.Validate(context.Background(), []catalog.ImportItem{
		{ID: "d", Name: "d", Type: entity.UnitTypeCategory, ParentID: ptr("c")},
		{ID: "c", Name: "c", Type: entity.UnitTypeCategory, ParentID: ptr("b")},
		{ID: "b", Name: "b", Type: entity.UnitTypeCategory, ParentID: ptr("a")},
		{ID: "a", Name: "a", Type: entity.UnitTypeCategory},
	}, batchDate)
	requireKind(t, err, domain.KindCycleDetected)
}

func TestValidate_ReglasDeCampo(t *testing.T) {
	cases := map[string]catalog.ImportItem{
		"id vacío":            {Name: "x", Type: entity.UnitTypeCategory},
		"nombre vacío":        {ID: "x", Type: entity.UnitTypeCategory},
		"tipo desconocido":    {ID: "x", Name: "x", Type: "SERVICE"},
		"offer sin precio":    {ID: "x", Name: "x", Type: entity.UnitTypeOffer},
		"precio negativo":     {ID: "x", Name: "x", Type: entity.UnitTypeOffer, Price: ptr(int64(-1))},
		"categoría con precio": {ID: "x", Name: "x", Type: entity.UnitTypeCategory, Price: ptr(int64(10))},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			v := catalog.NewBatchValidator(newFakeUnits(), 0)
			_, err := v.Validate(context.Background(), []catalog.ImportItem{item}, batchDate)
			requireKind(t, err, domain.KindInvalidUnit)
		})
	}
}

// Cada padre persistido se consulta una sola vez aunque lo referencien muchos ítems.
func TestValidate_MemoizaLecturas(t *testing.T) {
	units := newFakeUnits(category("c", nil))
	v := catalog.NewBatchValidator(units, 0)
	items := make([]catalog.ImportItem, 0, 20)
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		items = append(items, catalog.ImportItem{ID: id, Name: id, Type: entity.UnitTypeOffer, ParentID: ptr("c"), Price: ptr(int64(i))})
	}
	_, err := v.Validate(context.Background(), items, batchDate)
	require.NoError(t, err)
	assert.LessOrEqual(t, units.lookups, 21, "una lectura por ítem más una por el padre compartido")
}
