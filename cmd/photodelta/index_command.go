package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"photodelta/internal/delta"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <a|b> <directory>",
		Short: "Refresh one set's persistent index without matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := strings.ToUpper(strings.TrimSpace(args[0]))
			if set != "A" && set != "B" {
				return fmt.Errorf("set must be 'a' or 'b', got %q", args[0])
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			progress := newProgressRenderer(cfg)
			stats, err := delta.ReconcileSet(cmd.Context(), cfg, set, args[1], logger, progress.update)
			progress.finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Count"},
				[][]string{
					{"Scanned", strconv.Itoa(stats.Scanned)},
					{"Unchanged", strconv.Itoa(stats.Unchanged)},
					{"Added", strconv.Itoa(stats.Added)},
					{"Updated", strconv.Itoa(stats.Updated)},
					{"Removed", strconv.Itoa(stats.Removed)},
					{"Skipped", strconv.Itoa(stats.Skipped)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
	return cmd
}
