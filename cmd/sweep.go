package main

import (
	"context"
	"fmt"

	"account-provisioner/cmd/bootstrap"
	"account-provisioner/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired reservations once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var sweep commands.SweepCommands
		app := fx.New(
			bootstrap.ConfigModule,
			bootstrap.CoreModule,
			fx.Populate(&sweep),
			fx.NopLogger,
		)
		if err := app.Start(cmd.Context()); err != nil {
			return err
		}
		defer func() { _ = app.Stop(context.Background()) }()

		removed, err := sweep.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired reservations\n", removed)
		return nil
	},
}
