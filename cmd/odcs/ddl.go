package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yggdrasil/internal/ddl"
	"yggdrasil/internal/metrics"
)

func (a *app) newDDLCmd() *cobra.Command {
	var dialect, schema string
	cmd := &cobra.Command{
		Use:   "ddl FILE",
		Short: "Print CREATE TABLE statements for the objects of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.cfg.DDL.Dialect
			if cmd.Flags().Changed("dialect") {
				name = dialect
			}
			d, err := ddl.Lookup(name)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("schema") {
				schema = a.cfg.DDL.Options.String("schema", "")
			}

			dc, err := a.loadContract(cmd.Context(), "ddl", args[0])
			if err != nil {
				a.report(a.source(args[0]).Name(), err)
				return errRejected
			}
			stmts, err := ddl.BuildContractSQL(dc, d, ddl.WithSchema(schema))
			if err != nil {
				return err
			}
			metrics.RecordStatements(d.Name(), len(stmts))
			fmt.Fprintln(a.stdout, strings.Join(stmts, "\n\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "", fmt.Sprintf("SQL dialect, one of %v", ddl.Dialects()))
	cmd.Flags().StringVar(&schema, "schema", "", "schema qualifying unqualified table names")
	return cmd
}
