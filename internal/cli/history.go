package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded resolution runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runHistoryList(cmd)
			}
			return a.runHistoryShow(cmd, args[0])
		},
	}
}

func (a *app) runHistoryList(cmd *cobra.Command) error {
	index, err := a.attachIndex()
	if err != nil {
		return err
	}
	defer index.Detach()

	runs, err := index.Runs()
	if err != nil {
		return sysError(fmt.Errorf("listing runs: %w", err))
	}
	if a.flags.jsonMode {
		return printJSON(cmd, runs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tINVENTORY\tCREATED\tGROUPS\tIMAGES\tMISSES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Inventory, r.CreatedAt.Local().Format(time.DateTime), r.Groups, r.WithImage, r.Misses)
	}
	return w.Flush()
}

func (a *app) runHistoryShow(cmd *cobra.Command, runID string) error {
	index, err := a.attachIndex()
	if err != nil {
		return err
	}
	defer index.Detach()

	run, err := index.Run(runID)
	if err != nil {
		return classify(err)
	}
	records, err := index.Resolutions(runID)
	if err != nil {
		return classify(err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]any{"run": run, "resolutions": records})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s  %s  %s\n", run.ID, run.Inventory, run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "%d groups, %d excluded, %d with image, %d misses\n",
		run.Groups, run.Excluded, run.WithImage, run.Misses)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PART\tCOLOUR\tQTY\tSOURCE\tPATH")
	for _, r := range records {
		source, path := r.Source, r.Path
		if r.Missing {
			source, path = "-", "(missing)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.PartID, r.ColourID, r.Quantity, source, path)
	}
	return w.Flush()
}
