package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"yggdrasil/internal/contract"
)

func (a *app) newNormalizeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Print a contract with every default applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("normalize: unknown format %q; use yaml or json", format)
			}
			dc, err := a.loadContract(cmd.Context(), "normalize", args[0])
			if err != nil {
				a.report(a.source(args[0]).Name(), err)
				return errRejected
			}

			if format == "json" {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(dc)
			}
			if err := contract.EncodeYAML(a.stdout, dc); err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
