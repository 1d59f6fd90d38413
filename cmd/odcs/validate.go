package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yggdrasil/internal/contract"
	"yggdrasil/internal/document"
)

func (a *app) newValidateCmd() *cobra.Command {
	var (
		listPath    string
		conditional bool
		jobs        int
	)
	cmd := &cobra.Command{
		Use:   "validate [FILE...]",
		Short: "Validate contract documents",
		Long: "Validate loads every FILE (\"-\" reads stdin) and prints \"ok FILE\" or one line\n" +
			"per field error. It exits non-zero when any document is rejected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if listPath != "" {
				listed, err := document.ReadList(listPath)
				if err != nil {
					return err
				}
				files = append(files, listed...)
			}
			if len(files) == 0 {
				return fmt.Errorf("validate: no documents given")
			}
			srcs, err := a.sources(files)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			var opts []contract.Option
			if conditional || a.cfg.Validation.ConditionalRules {
				opts = append(opts, contract.WithConditionalRules())
			}
			limit := a.cfg.Validation.Jobs
			if cmd.Flags().Changed("jobs") {
				limit = jobs
			}

			rejected := 0
			for _, l := range document.LoadAll(cmd.Context(), srcs, limit) {
				if _, err := a.decodeContract("validate", l, opts...); err != nil {
					rejected++
					a.report(l.Name, err)
					continue
				}
				fmt.Fprintf(a.stdout, "ok %s\n", l.Name)
			}
			a.log.Info("validation finished", "documents", len(files), "rejected", rejected)
			if rejected > 0 {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listPath, "list", "", "file listing documents to validate, one path per line")
	cmd.Flags().BoolVar(&conditional, "conditional-rules", false, "require query, metric or engine/implementation according to quality type")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "documents validated concurrently (0 means no limit)")
	return cmd
}
