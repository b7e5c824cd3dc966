package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accounts/internal/store"
	"github.com/dropDatabas3/accounts/internal/store/adapters/sqldb"
)

type migrator interface {
	Migrate(ctx context.Context) (*sqldb.MigrationResult, error)
}

func newMigrateCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes (postgres | sqlite)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.cfg.Storage
			conn, err := store.OpenAdapter(cmd.Context(), store.AdapterConfig{Name: s.Driver, DSN: s.DSN})
			if err != nil {
				return err
			}
			defer conn.Close()

			m, ok := conn.(migrator)
			if !ok {
				return fmt.Errorf("migrate: driver %q has no schema", s.Driver)
			}
			res, err := m.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied=%v skipped=%v took=%s\n", res.Applied, res.Skipped, res.Duration)
			return nil
		},
	}
}
