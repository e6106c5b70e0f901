// Package storage elige el almacén del árbol según STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// Open devuelve el TxRunner configurado y la función que libera sus recursos.
// Con postgres aplica las migraciones pendientes si DB_AUTO_MIGRATE está activo.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (appcatalog.TxRunner, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al detener el proceso")
		return memory.NewStore(), func() {}, nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Strs("applied", applied).Msg("migraciones al día")
		}
		return postgres.NewTxRunner(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("STORAGE_DRIVER %q no soportado", cfg.Storage.Driver)
}
