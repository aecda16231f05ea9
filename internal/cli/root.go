package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkgrun/internal/toolref"
)

// buildVersion is stamped by the release process via -ldflags.
var buildVersion = "dev"

var (
	flagUpdate   bool
	flagNoUpdate bool
	flagVerbose  bool
)

// exitCode carries the launched tool's exit code out of the command tree.
var exitCode int

// Execute runs the root cobra command and reports the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return exitCode
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkgrun [flags] <name>[@version] [tool-args...]",
		Short: "Run packaged tools straight from the local package cache",
		Long: `pkgrun resolves a tool reference, runs the cached copy when one exists
and refreshes the cache from the package registry in the background.
Standard streams pass through to the tool unmodified. Pinning a version
(name@version) or --no-update disables the background refresh.`,
		Version: buildVersion,
		Args:    cobra.ArbitraryArgs,
		RunE:    runTool,
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging on stderr")
	cmd.Flags().BoolVar(&flagUpdate, "update", true, "Check the registry for a newer version in the background")
	cmd.Flags().BoolVar(&flagNoUpdate, "no-update", false, "Skip the background registry check")
	// Everything after the tool name belongs to the tool, not to pkgrun.
	cmd.Flags().SetInterspersed(false)

	cmd.AddCommand(newCacheCmd())

	return cmd
}

func runTool(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("missing tool name, expected <name>[@version]")
	}

	ref, err := toolref.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse tool reference %q: %w", args[0], err)
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	skipUpdate := flagNoUpdate || !flagUpdate
	exitCode = app.Orchestrator.Execute(cmd.Context(), ref, args[1:], skipUpdate)
	return nil
}
