package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func init() {
	// Never expose debug output because of a missing setting.
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

var rootCmd = &cobra.Command{
	Use:   "provisioner",
	Short: "Account provisioning service",
	Long: `Provisioner reserves account keys against a fingerprint and turns
incoming payments into the ledger actions that create and fund the account.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, sweepCmd, keyCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
