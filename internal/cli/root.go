// Package cli implements the partlabels command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logMode   string
	jsonMode  bool
}

// app is the state shared by the subcommands of one invocation. It is filled
// in by the root command's PersistentPreRunE.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       *logger.Logger
}

// NewRootCmd creates the top-level "partlabels" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logger.Nop()}

	root := &cobra.Command{
		Use:   "partlabels",
		Short: "Resolve part images for storage labels",
		Long: `partlabels builds a parts catalog from the Rebrickable bulk tables and
finds the best image for every part in an inventory, for printing storage
bin labels.`,
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform cache dir)")
	pf.StringVar(&a.flags.logMode, "log-mode", "", "log mode: dev or prod")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newFetchDataCmd(a))
	root.AddCommand(newResolveCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newDiffCmd(a))
	root.AddCommand(newSyncImagesCmd(a))
	root.AddCommand(newHistoryCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "partlabels:", err)
	var ce *cmdError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// setup loads .env, resolves the configuration directory, reads the
// configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	// A missing .env is normal; anything in it only fills unset variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return userError(fmt.Errorf("loading .env: %w", err))
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolving config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir, a.flags)
	if err != nil {
		return userError(err)
	}
	a.cfg = cfg

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return sysError(err)
	}
	a.log = log
	a.log.Debug("configuration loaded", "config_dir", configDir, "data_dir", cfg.DataDir, "api_key", cfg.APIKey)
	return nil
}

// cmdError carries the exit code for an error returned by a command.
type cmdError struct {
	code int
	err  error
}

func (e *cmdError) Error() string { return e.err.Error() }
func (e *cmdError) Unwrap() error { return e.err }

// userError marks err as caused by bad input or usage (exit code 1).
func userError(err error) error {
	if err == nil {
		return nil
	}
	return &cmdError{code: exitUserError, err: err}
}

// sysError marks err as an environment or I/O failure (exit code 2).
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &cmdError{code: exitSysError, err: err}
}

// classify picks the exit code for an error from the domain packages.
// Missing input and malformed files are the user's to fix; everything else
// is a system error.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrParse),
		errors.Is(err, types.ErrMissingAPIKey),
		errors.Is(err, os.ErrNotExist):
		return userError(err)
	default:
		return sysError(err)
	}
}
