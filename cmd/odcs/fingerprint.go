package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yggdrasil/internal/contract"
	"yggdrasil/internal/document"
)

func (a *app) newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE...",
		Short: "Print a content hash of each normalized contract",
		Long: "Two documents that normalize to the same contract share a fingerprint,\n" +
			"whatever their key order, formatting or omitted defaults.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := a.sources(args)
			if err != nil {
				return fmt.Errorf("fingerprint: %w", err)
			}
			failed := false
			for _, l := range document.LoadAll(cmd.Context(), srcs, a.cfg.Validation.Jobs) {
				dc, err := a.decodeContract("fingerprint", l)
				if err != nil {
					a.report(l.Name, err)
					failed = true
					continue
				}
				sum, err := contract.Fingerprint(dc)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s  %s\n", sum, l.Name)
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
}
