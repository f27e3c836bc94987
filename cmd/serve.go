package main

import (
	"context"
	"fmt"
	"log/slog"

	"account-provisioner/cmd/bootstrap"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// @title           account-provisioner
// @version         1.0
// @description     Reserves account keys and provisions accounts from ledger payments.

// @BasePath  /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, payment consumer and sweeper",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := fx.New(bootstrap.Module)

		if err := app.Start(cmd.Context()); err != nil {
			return err
		}

		sig := <-app.Wait()

		if err := app.Stop(context.Background()); err != nil {
			slog.Error("failed to stop application", "error", err)
		}

		if sig.ExitCode != 0 {
			slog.Error("application stopped with failure", "exit_code", sig.ExitCode)
			return errExitCode(sig.ExitCode)
		}
		slog.Info("application stopped")
		return nil
	},
}

// errExitCode carries a non-zero fx exit code out through cobra.
type errExitCode int

func (e errExitCode) Error() string {
	return fmt.Sprintf("exit code %d", int(e))
}
