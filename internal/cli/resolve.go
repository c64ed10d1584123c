package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/internal/report"
	"github.com/mesh-intelligence/partlabels/internal/resolve"
	"github.com/mesh-intelligence/partlabels/internal/thumbs"
)

const reportSuffix = ".labels.json"

type resolveFlags struct {
	output     string
	thumbnails int
	noIndex    bool
}

func newResolveCmd(a *app) *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve <inventory.csv>",
		Short: "Resolve an image for every part group of an inventory",
		Long: `Read an inventory (part,color,quantity with a header line), fetch the colour
archives it needs, pick the best image for every part group and write a JSON
label report grouped by category.

The report goes to <inventory>` + reportSuffix + ` unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report path")
	cmd.Flags().IntVar(&f.thumbnails, "thumbnails", -1, "thumbnail box size in pixels, 0 to disable (default from config)")
	cmd.Flags().BoolVar(&f.noIndex, "no-index", false, "do not record the run in the index")
	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, inventoryPath string, f resolveFlags) error {
	ctx := cmd.Context()
	fetcher := a.newFetcher()
	defer fetcher.Close()

	if err := catalog.Download(ctx, fetcher, a.cfg.DataDir, a.log); err != nil {
		return sysError(err)
	}
	store, err := a.loadCatalog()
	if err != nil {
		return err
	}
	inv, err := a.readInventory(store, inventoryPath, false)
	if err != nil {
		return err
	}

	resolver := resolve.New(store, resolve.Options{
		DataDir: a.cfg.DataDir,
		Policy:  a.cfg.Policy,
		Logger:  a.log,
	})
	res, err := resolver.Run(ctx, inv, fetcher)
	if err != nil {
		return classify(err)
	}

	name := filepath.Base(inventoryPath)
	var runID string
	if !f.noIndex {
		runID, err = a.saveRun(res, name)
		if err != nil {
			return err
		}
	}

	size := a.cfg.ThumbnailSize
	if f.thumbnails >= 0 {
		size = f.thumbnails
	}
	gen := thumbs.Generator{Dir: paths.Layout{Root: a.cfg.DataDir}.Thumbs(), Size: size}
	opts := report.Options{Inventory: name, RunID: runID, Logger: a.log}
	if gen.Enabled() {
		opts.Thumbnail = gen.Make
	}
	doc := report.Build(res, store, opts)

	output := f.output
	if output == "" {
		output = strings.TrimSuffix(inventoryPath, filepath.Ext(inventoryPath)) + reportSuffix
	}
	if err := report.WriteJSON(output, doc); err != nil {
		return sysError(err)
	}

	a.log.Info("resolution finished",
		"inventory", name,
		"groups", res.Groups,
		"with_image", res.WithImage,
		"misses", res.Misses)

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]any{
			"run_id":          runID,
			"report":          output,
			"groups":          res.Groups,
			"excluded":        res.Excluded,
			"with_image":      res.WithImage,
			"misses":          res.Misses,
			"missing_colours": res.MissingColours,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d groups, %d excluded, %d with image, %d missing\n",
		res.Groups, res.Excluded, res.WithImage, res.Misses)
	if len(res.MissingColours) > 0 {
		fmt.Fprintf(out, "colours without archives: %s\n", strings.Join(res.MissingColours, ","))
	}
	fmt.Fprintln(out, "report:", output)
	return nil
}

func (a *app) saveRun(res *resolve.Result, name string) (string, error) {
	index, err := a.attachIndex()
	if err != nil {
		return "", err
	}
	defer index.Detach()

	runID, err := index.SaveRun(res.Run(name), res.Records())
	if err != nil {
		return "", sysError(fmt.Errorf("saving run: %w", err))
	}
	return runID, nil
}
