package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/imagesync"
	"github.com/mesh-intelligence/partlabels/internal/rebrickable"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

func newSyncImagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-images <inventory.csv>",
		Short: "Download the API part images of an inventory",
		Long: `Ask the Rebrickable API for every part of an inventory and download the part
images it names into the data directory, recording each one in the index.
Requires REBRICKABLE_API_KEY. Calls are spaced by api_min_interval.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSyncImages(cmd, args[0])
		},
	}
}

func (a *app) runSyncImages(cmd *cobra.Command, inventoryPath string) error {
	api, err := rebrickable.New(rebrickable.Options{
		BaseURL:     a.cfg.APIBaseURL,
		APIKey:      a.cfg.APIKey,
		MinInterval: a.cfg.APIMinInterval,
		Logger:      a.log,
	})
	if err != nil {
		return classify(err)
	}

	store, err := a.loadCatalog()
	if err != nil {
		return err
	}
	inv, err := a.readInventory(store, inventoryPath, false)
	if err != nil {
		return err
	}
	entries := inv.Entries()
	parts := make([]*types.Part, 0, len(entries))
	for _, r := range entries {
		parts = append(parts, r.Part)
	}

	index, err := a.attachIndex()
	if err != nil {
		return err
	}
	defer index.Detach()

	fetcher := a.newFetcher()
	defer fetcher.Close()

	syncer := imagesync.New(api, fetcher, index, imagesync.Options{
		DataDir:    a.cfg.DataDir,
		CDNBaseURL: a.cfg.CDNBaseURL,
		Policy:     a.cfg.Policy,
		Logger:     a.log,
	})
	st, err := syncer.Sync(cmd.Context(), parts)
	if err != nil {
		return classify(err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]int{
			"parts":      st.Parts,
			"images":     st.Images,
			"indexed":    st.Indexed,
			"foreign":    st.Foreign,
			"existing":   st.Existing,
			"downloaded": st.Downloaded,
			"failed":     st.Failed,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d parts, %d images: %d downloaded, %d already present, %d indexed, %d failed\n",
		st.Parts, st.Images, st.Downloaded, st.Existing, st.Indexed, st.Failed)
	return nil
}
