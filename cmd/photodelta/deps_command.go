package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photodelta/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "missing (optional)"
					}
				}
				rows = append(rows, []string{s.Name, s.Command, state, s.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Command", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %v", missing)
			}
			return nil
		},
	}
}
