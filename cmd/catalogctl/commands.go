package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/storage"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// cli estado compartido entre subcomandos, cargado en PersistentPreRunE.
type cli struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Herramienta de administración del catálogo de unidades",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = logger.New(logger.Config{
				Env:     cfg.App.Env,
				Level:   cfg.Log.Level,
				Service: "catalogctl",
				Out:     cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	root.AddCommand(c.migrateCmd(), c.importCmd(), c.treeCmd())
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes en PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := postgres.NewPool(cmd.Context(), c.cfg.DB, c.cfg.App.Name+"-ctl")
			if err != nil {
				return err
			}
			defer pool.Close()
			applied, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", name)
			}
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "import <archivo.json|archivo.yaml>",
		Short: "Importa un lote de unidades desde un archivo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var override *time.Time
			if date != "" {
				t, err := parseFlagDate(date)
				if err != nil {
					return err
				}
				override = &t
			}
			req, err := parseBatchFile(args[0], raw, override)
			if err != nil {
				return err
			}

			txRunner, closeStore, err := storage.Open(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer closeStore()

			uc := appcatalog.NewImportUseCase(txRunner, appcatalog.NewStatisticsRecorder(), c.cfg.Catalog.MaxDepth, c.log)
			res, err := uc.Import(cmd.Context(), *req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "updateDate del lote (RFC 3339); reemplaza al del archivo")
	return cmd
}

func (c *cli) treeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Muestra una unidad con su subárbol y precios recalculados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txRunner, closeStore, err := storage.Open(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer closeStore()

			node, err := appcatalog.NewQueryUseCase(txRunner, c.cfg.Catalog.MaxDepth).GetUnitTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(node)
			}
			renderTree(cmd.OutOrStdout(), node)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON en lugar de árbol de texto")
	return cmd
}
