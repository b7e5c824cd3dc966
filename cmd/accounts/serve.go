package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accounts/internal/app"
	"github.com/dropDatabas3/accounts/internal/http/server"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

func newServeCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.ToContext(cmd.Context(), logger.L())

			c, err := app.Build(ctx, o.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.L().Warn("close failed", logger.Err(err))
				}
			}()

			return server.Run(ctx, server.Options{
				Addr:         o.cfg.Server.Addr,
				ReadTimeout:  o.cfg.Server.ReadTimeout,
				WriteTimeout: o.cfg.Server.WriteTimeout,
			}, c.Handler())
		},
	}
}
