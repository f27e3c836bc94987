package main

import (
	"fmt"

	"account-provisioner/cmd/bootstrap"
	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/pkg/config"

	"github.com/spf13/cobra"
)

var tokenSubject, tokenRole string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a registrar or the ledger bridge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		role, err := principal.NewRole(tokenRole)
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		svc, err := bootstrap.NewJWTService(cfg)
		if err != nil {
			return err
		}
		token, err := svc.GenerateToken(tokenSubject, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject, usually the caller's account")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(principal.RoleRegistrar), "registrar or ledger")
	_ = tokenCmd.MarkFlagRequired("subject")
}
