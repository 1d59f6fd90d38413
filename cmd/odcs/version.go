package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yggdrasil/internal/contract"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the odcs version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "odcs %s (ODCS apiVersion %s)\n", version, contract.APIVersion)
			return nil
		},
	}
}
