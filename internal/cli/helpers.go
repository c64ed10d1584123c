package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
	"github.com/mesh-intelligence/partlabels/internal/fetch"
	"github.com/mesh-intelligence/partlabels/internal/inventory"
	"github.com/mesh-intelligence/partlabels/pkg/sqlite"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// newFetcher starts a CDN fetcher sized from the configuration. The caller
// must Close it.
func (a *app) newFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Options{
		BaseURL: a.cfg.CDNBaseURL,
		Workers: a.cfg.Workers,
		Logger:  a.log,
	})
}

// loadCatalog reads the bulk tables from the data directory.
func (a *app) loadCatalog() (*catalog.Store, error) {
	store, err := catalog.Load(a.cfg.DataDir, catalog.Options{
		TrimLeadingZeros: a.cfg.TrimLeadingZeros,
		Logger:           a.log,
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, userError(fmt.Errorf("%w (run \"partlabels fetch-data\" first)", err))
	}
	if err != nil {
		return nil, classify(err)
	}
	return store, nil
}

// readInventory reads an inventory file against the catalog.
func (a *app) readInventory(c types.Catalog, path string, skipUnknown bool) (*inventory.Inventory, error) {
	inv := inventory.New(c, inventory.Options{
		TrimLeadingZeros: a.cfg.TrimLeadingZeros,
		SkipUnknown:      skipUnknown,
		Logger:           a.log,
	})
	if err := inv.ReadFile(path); err != nil {
		return nil, classify(err)
	}
	return inv, nil
}

// attachIndex opens the index in the data directory. The caller must defer
// Detach.
func (a *app) attachIndex() (types.Index, error) {
	index := sqlite.NewIndex(a.log)
	if err := index.Attach(a.cfg.DataDir); err != nil {
		return nil, sysError(fmt.Errorf("attach index: %w", err))
	}
	return index, nil
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
