package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
)

func newFetchDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-data",
		Short: "Download the bulk catalog tables",
		Long: `Download colors, part_categories, parts and elements from the CDN into the
data directory and decompress them. Tables already present are kept; delete
them to refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetchData(cmd)
		},
	}
}

func (a *app) runFetchData(cmd *cobra.Command) error {
	f := a.newFetcher()
	defer f.Close()

	if err := catalog.Download(cmd.Context(), f, a.cfg.DataDir, a.log); err != nil {
		return sysError(err)
	}
	store, err := a.loadCatalog()
	if err != nil {
		return err
	}

	colours, categories, parts, elements := store.Stats()
	stubParts, stubColours := store.Backfilled()
	stats := map[string]int{
		"colours":            colours,
		"categories":         categories,
		"parts":              parts,
		"elements":           elements,
		"backfilled_parts":   stubParts,
		"backfilled_colours": stubColours,
	}
	if a.flags.jsonMode {
		return printJSON(cmd, stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "catalog ready in %s: %d colours, %d categories, %d parts, %d elements\n",
		a.cfg.DataDir, colours, categories, parts, elements)
	return nil
}
