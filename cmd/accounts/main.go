// Command accounts corre el servicio de cuentas y expone tareas de operación
// (migraciones, alta inicial, hash de passwords, inspección de tokens).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accounts/internal/config"
	"github.com/dropDatabas3/accounts/internal/observability/logger"

	// registra los adapters de storage vía init()
	_ "github.com/dropDatabas3/accounts/internal/store/adapters/dal"
)

func main() {
	// .env es opcional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type rootOpts struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{configPath: os.Getenv("ACCOUNTS_CONFIG")}

	root := &cobra.Command{
		Use:           "accounts",
		Short:         "Servicio de organizaciones, usuarios y merchants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			o.cfg = cfg
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.Log.Level,
				ServiceName: "accounts",
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", o.configPath, "Archivo YAML de configuración (env ACCOUNTS_CONFIG)")

	root.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newOrgCmd(o),
		newUserCmd(o),
		newHashCmd(o),
		newTokenCmd(o),
	)
	return root
}
