package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
)

// Requiere una base real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func ptr[T any](v T) *T { return &v }

func TestPostgres_ImportQueryDelete(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)

	// Ids únicos por ejecución para no chocar con datos previos.
	p := uuid.NewString()[:8] + "-"
	root, o1, o2 := p+"root", p+"o1", p+"o2"
	date := time.Date(2022, 5, 28, 21, 12, 1, 0, time.UTC)

	importUC := appcatalog.NewImportUseCase(runner, appcatalog.NewStatisticsRecorder(), 0, nil)
	queryUC := appcatalog.NewQueryUseCase(runner, 0)
	deleteUC := appcatalog.NewDeleteUseCase(runner, 0, nil)

	_, err := importUC.ImportBatch(ctx, []catalog.ImportItem{
		{ID: o1, Name: "o1", Type: entity.UnitTypeOffer, ParentID: ptr(root), Price: ptr(int64(100))},
		{ID: root, Name: "root", Type: entity.UnitTypeCategory},
		{ID: o2, Name: "o2", Type: entity.UnitTypeOffer, ParentID: ptr(root), Price: ptr(int64(200))},
	}, date)
	require.NoError(t, err)

	tree, err := queryUC.GetUnitTree(ctx, root)
	require.NoError(t, err)
	require.NotNil(t, tree.Price)
	assert.Equal(t, int64(300), *tree.Price)
	assert.Len(t, tree.Children, 2)
	assert.Equal(t, date, tree.Date.Time())

	_, err = importUC.ImportBatch(ctx, []catalog.ImportItem{
		{ID: root, Name: "root", Type: entity.UnitTypeOffer, Price: ptr(int64(1))},
	}, date.Add(time.Hour))
	kind, ok := domain.ValidationKindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindTypeMismatch, kind)

	stats, err := queryUC.GetUnitStatistics(ctx, o1, &date, nil)
	require.NoError(t, err)
	assert.Len(t, stats.Items, 1)

	require.NoError(t, deleteUC.Delete(ctx, root))
	_, err = queryUC.GetUnitTree(ctx, o2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err = queryUC.GetUnitStatistics(ctx, o1, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, stats.Items)
}

func TestPostgres_LockForUpdateInsideTx(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	id := "lock-" + uuid.NewString()[:8]

	err := runner.Run(ctx, func(units repository.UnitRepository, _ repository.StatisticRepository) error {
		require.NoError(t, units.Upsert(ctx, &entity.Unit{ID: id, Name: "x", Type: entity.UnitTypeCategory, Date: time.Now().UTC()}))
		require.NoError(t, units.LockForUpdate(ctx, []string{id, "missing"}))
		ok, err := units.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestPostgres_StatisticsSameDateRejected(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	importUC := appcatalog.NewImportUseCase(runner, appcatalog.NewStatisticsRecorder(), 0, nil)
	queryUC := appcatalog.NewQueryUseCase(runner, 0)

	id := "dup-" + uuid.NewString()[:8]
	date := time.Date(2022, 5, 28, 21, 12, 1, 0, time.UTC)
	_, err := importUC.ImportBatch(ctx, []catalog.ImportItem{{ID: id, Name: "o", Type: entity.UnitTypeOffer, Price: ptr(int64(10))}}, date)
	require.NoError(t, err)

	_, err = importUC.ImportBatch(ctx, []catalog.ImportItem{{ID: id, Name: "o", Type: entity.UnitTypeOffer, Price: ptr(int64(99))}}, date)
	kind, ok := domain.ValidationKindOf(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, domain.KindDuplicateRecord, kind)

	stats, err := queryUC.GetUnitStatistics(ctx, id, nil, nil)
	require.NoError(t, err)
	require.Len(t, stats.Items, 1)
	assert.Equal(t, int64(10), *stats.Items[0].Price)

	tree, err := queryUC.GetUnitTree(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), *tree.Price)
}

// Un lote agrega ofertas bajo c mientras otro mueve c entre dos raíces. Los abortos por
// interbloqueo son válidos; lo que no puede pasar es que una raíz quede con un precio viejo.
func TestPostgres_ConcurrentMoveAndInsertKeepRootsFresh(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	importUC := appcatalog.NewImportUseCase(runner, appcatalog.NewStatisticsRecorder(), 0, nil)
	queryUC := appcatalog.NewQueryUseCase(runner, 0)

	p := uuid.NewString()[:8] + "-"
	left, right, c := p+"left", p+"right", p+"c"
	date := time.Date(2022, 5, 28, 21, 12, 1, 0, time.UTC)
	_, err := importUC.ImportBatch(ctx, []catalog.ImportItem{
		{ID: left, Name: "left", Type: entity.UnitTypeCategory},
		{ID: right, Name: "right", Type: entity.UnitTypeCategory},
		{ID: c, Name: "c", Type: entity.UnitTypeCategory, ParentID: ptr(left)},
	}, date)
	require.NoError(t, err)

	const rounds = 30
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = importUC.ImportBatch(ctx, []catalog.ImportItem{
				{ID: fmt.Sprintf("%so%02d", p, i), Name: "o", Type: entity.UnitTypeOffer, ParentID: ptr(c), Price: ptr(int64(i + 1))},
			}, date.Add(time.Duration(i+1)*time.Second))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			parent := left
			if i%2 == 0 {
				parent = right
			}
			_, _ = importUC.ImportBatch(ctx, []catalog.ImportItem{
				{ID: c, Name: "c", Type: entity.UnitTypeCategory, ParentID: ptr(parent)},
			}, date.Add(time.Hour+time.Duration(i)*time.Second))
		}
	}()
	wg.Wait()

	for _, id := range []string{left, right, c} {
		fresh, err := queryUC.GetUnitTree(ctx, id)
		require.NoError(t, err)
		var stored *entity.Unit
		err = runner.RunReadOnly(ctx, func(units repository.UnitRepository, _ repository.StatisticRepository) error {
			var err error
			stored, err = units.GetByID(ctx, id)
			return err
		})
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, fresh.Price, stored.Price, id)
	}
}
