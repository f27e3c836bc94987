package main

import (
	"fmt"

	"account-provisioner/internal/domain/key"

	"github.com/spf13/cobra"
)

var verifyChecksum bool

var keyCmd = &cobra.Command{
	Use:   "key [public-key]",
	Short: "Decode a public key and print its canonical forms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := key.NewParser(verifyChecksum).Parse(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "curve:     %s\n", rec.Curve())
		fmt.Fprintf(out, "data:      %s\n", rec.Hex())
		fmt.Fprintf(out, "canonical: %s\n", rec)
		if legacy, ok := rec.LegacyString(); ok {
			fmt.Fprintf(out, "legacy:    %s\n", legacy)
		}
		return nil
	},
}

func init() {
	keyCmd.Flags().BoolVar(&verifyChecksum, "verify-checksum", true, "reject keys whose checksum does not match")
}
