package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/inventory"
)

type diffRow struct {
	PartID      string `json:"part_id"`
	ColourID    string `json:"colour_id"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <current.csv> <previous.csv>",
		Short: "List parts of one inventory that another does not have",
		Long: `Print the entries of the current inventory whose part, and whose base part,
appear nowhere in the previous inventory. Output is part,color,quantity CSV,
or JSON with --json. Rows naming parts or colours outside the catalog are
skipped with a warning.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd, args[0], args[1])
		},
	}
}

func (a *app) runDiff(cmd *cobra.Command, currentPath, previousPath string) error {
	store, err := a.loadCatalog()
	if err != nil {
		return err
	}
	current, err := a.readInventory(store, currentPath, true)
	if err != nil {
		return err
	}
	previous, err := a.readInventory(store, previousPath, true)
	if err != nil {
		return err
	}
	records := inventory.Diff(current, previous)
	rows := make([]diffRow, 0, len(records))
	for _, r := range records {
		row := diffRow{PartID: r.Part.ID, Quantity: r.Quantity, Description: r.Part.Description}
		if r.Colour != nil {
			row.ColourID = r.Colour.ID
		}
		rows = append(rows, row)
	}

	if a.flags.jsonMode {
		return printJSON(cmd, rows)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "part,color,quantity")
	for _, row := range rows {
		fmt.Fprintf(out, "%s,%s,%d\n", row.PartID, row.ColourID, row.Quantity)
	}
	return nil
}
