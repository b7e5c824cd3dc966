package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/security/password"
)

func newHashCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Imprime el hash argon2id de la password leída de stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			h := password.NewHasher(password.Params{
				Memory:      o.cfg.Argon2.MemoryKiB,
				Time:        o.cfg.Argon2.Time,
				Parallelism: o.cfg.Argon2.Parallelism,
			})
			phc, err := h.Hash(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phc)
			return nil
		},
	}
}

func newTokenCmd(o *rootOpts) *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Inspección de access tokens"}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "decode <token>",
		Short: "Valida el token con la config actual e imprime sus claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, err := jwt.NewIssuer(jwt.Settings{
				Secret:    o.cfg.JWT.Secret,
				Algorithm: o.cfg.JWT.Algorithm,
				Issuer:    o.cfg.JWT.Issuer,
			})
			if err != nil {
				return err
			}
			claims, err := iss.Decode(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), claims)
		},
	})
	return tokenCmd
}
