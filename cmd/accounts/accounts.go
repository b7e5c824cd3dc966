package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/app"
	"github.com/dropDatabas3/accounts/internal/http/dto"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// withContainer arma el Container, corre fn y lo cierra.
func withContainer(cmd *cobra.Command, o *rootOpts, fn func(c *app.Container) error) error {
	ctx := logger.ToContext(cmd.Context(), logger.L())
	cmd.SetContext(ctx)
	c, err := app.Build(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSecret lee una línea de r; así la password no queda en el historial.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	s := strings.TrimRight(line, "\r\n")
	if s == "" {
		return "", fmt.Errorf("empty password on stdin")
	}
	return s, nil
}

func newOrgCmd(o *rootOpts) *cobra.Command {
	orgCmd := &cobra.Command{Use: "org", Short: "Operaciones sobre organizaciones"}

	var name, domain string
	var activate bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea una organización (queda pending salvo --activate)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, o, func(c *app.Container) error {
				ctx := cmd.Context()
				org, err := c.Organizations.Create(ctx, accounts.CreateOrganizationInput{Name: name, Domain: domain})
				if err != nil {
					return err
				}
				if activate {
					if org, err = c.Organizations.Activate(ctx, org.ID); err != nil {
						return err
					}
				}
				return printJSON(cmd.OutOrStdout(), dto.FromOrganization(org))
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Nombre visible")
	create.Flags().StringVar(&domain, "domain", "", "Dominio único (ej. acme.com)")
	create.Flags().BoolVar(&activate, "activate", false, "Activar al crear")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("domain")

	orgCmd.AddCommand(create)
	return orgCmd
}

func newUserCmd(o *rootOpts) *cobra.Command {
	userCmd := &cobra.Command{Use: "user", Short: "Operaciones sobre usuarios"}

	var orgID, email, name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario; la password se lee de stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withContainer(cmd, o, func(c *app.Container) error {
				u, err := c.Users.Create(cmd.Context(), accounts.CreateUserInput{
					OrganizationID: orgID,
					Email:          email,
					Password:       secret,
					Name:           name,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.FromUser(u))
			})
		},
	}
	create.Flags().StringVar(&orgID, "org", "", "ID de la organización")
	create.Flags().StringVar(&email, "email", "", "Email del usuario")
	create.Flags().StringVar(&name, "name", "", "Nombre visible")
	for _, f := range []string{"org", "email", "name"} {
		_ = create.MarkFlagRequired(f)
	}

	userCmd.AddCommand(create)
	return userCmd
}
