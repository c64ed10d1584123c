package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and data directories",
		Long: `Create the configuration directory with a default config.yaml, and the
data directory with its cache layout and index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	// config.yaml was created by the root command if it was missing.
	configPath := filepath.Join(a.configDir, configFileExt)

	layout := paths.Layout{Root: a.cfg.DataDir}
	if err := layout.Ensure(); err != nil {
		return sysError(fmt.Errorf("create data directory: %w", err))
	}

	index, err := a.attachIndex()
	if err != nil {
		return err
	}
	if err := index.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize index: %w", err))
	}

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]string{"config": configPath, "data": a.cfg.DataDir})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "partlabels initialized successfully")
	fmt.Fprintln(out, "  config:", configPath)
	fmt.Fprintln(out, "  data:  ", a.cfg.DataDir)
	return nil
}
