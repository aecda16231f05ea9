package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pkgrun/internal/cache"
	"pkgrun/internal/orchestrator"
	"pkgrun/internal/toolref"
)

var clearYes bool

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local package cache",
	}

	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheShowCmd())
	cmd.AddCommand(newCacheAddCmd())
	cmd.AddCommand(newCacheUpdateCmd())
	cmd.AddCommand(newCacheRemoveCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed tools",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	entries := app.Cache.ListInstalled()
	if len(entries) == 0 {
		cmd.Println("(no tools installed)")
		return nil
	}
	printEntryTable(cmd, entries)
	return nil
}

func newCacheShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every cached version of a tool",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheShow,
	}
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	entries := app.Cache.GetToolVersions(args[0])
	if len(entries) == 0 {
		return fmt.Errorf("tool %s is not installed", args[0])
	}
	printEntryTable(cmd, entries)
	return nil
}

func newCacheAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>[@version]",
		Short: "Download a tool into the cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheAdd,
	}
}

func runCacheAdd(cmd *cobra.Command, args []string) error {
	ref, err := toolref.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse tool reference %q: %w", args[0], err)
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	installed, err := app.Registry.Download(cmd.Context(), ref.PackageID, ref.Version)
	if err != nil {
		return fmt.Errorf("install %s: %w", ref.String(), err)
	}
	cmd.Printf("installed %s@%s\n", ref.PackageID, installed)
	return nil
}

func newCacheUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [<id>]",
		Short: "Update one installed tool, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheUpdate,
	}
}

func runCacheUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	var ids []string
	if len(args) == 1 {
		ids = []string{args[0]}
	} else {
		ids = distinctIDs(app.Cache.ListInstalled())
	}
	if len(ids) == 0 {
		cmd.Println("(no tools installed)")
		return nil
	}

	var errs []error
	for _, id := range ids {
		updated, installed, err := updateTool(cmd, app, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if updated {
			cmd.Printf("updated %s to %s\n", id, installed)
		} else {
			cmd.Printf("%s is up to date at %s\n", id, installed)
		}
	}
	return errors.Join(errs...)
}

func updateTool(cmd *cobra.Command, app *app, id string) (bool, string, error) {
	latest, err := app.Registry.LatestVersion(cmd.Context(), id)
	if err != nil {
		return false, "", err
	}

	if current, ok := app.Cache.GetTool(id); ok && !orchestrator.IsNewerVersion(latest, current.Version) {
		return false, current.Version, nil
	}

	installed, err := app.Registry.Download(cmd.Context(), id, latest)
	if err != nil {
		return false, "", err
	}
	return true, installed, nil
}

func newCacheRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove every cached version of a tool",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheRemove,
	}
}

func runCacheRemove(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	if !app.Cache.RemoveTool(args[0]) {
		return fmt.Errorf("tool %s is not installed", args[0])
	}
	cmd.Printf("removed %s\n", args[0])
	return nil
}

func newCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every installed tool",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}
	cmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	entries := app.Cache.ListInstalled()
	if len(entries) == 0 {
		cmd.Println("(no tools installed)")
		return nil
	}

	if !clearYes {
		count := len(distinctIDs(entries))
		if !confirmClear(cmd.InOrStdin(), cmd.OutOrStdout(), count) {
			cmd.Println("aborted")
			return nil
		}
	}

	removed := app.Cache.ClearAll()
	cmd.Printf("removed %d tool(s)\n", removed)
	return nil
}

// confirmClear asks the user before wiping the cache. Anything but an
// explicit yes declines.
func confirmClear(in io.Reader, out io.Writer, count int) bool {
	fmt.Fprintf(out, "Remove %d installed tool(s)? [y/N]: ", count)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// distinctIDs returns the distinct package ids in entry order,
// case-insensitively.
func distinctIDs(entries []cache.Entry) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, entry := range entries {
		key := strings.ToLower(entry.PackageID)
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, entry.PackageID)
	}
	return ids
}

func printEntryTable(cmd *cobra.Command, entries []cache.Entry) {
	cmd.Println(headerStyle.Render(fmt.Sprintf("%-30s %-16s %s", "Package", "Version", "Command")))
	for _, entry := range entries {
		cmd.Printf("%s %s %s\n",
			idStyle.Render(fmt.Sprintf("%-30s", entry.PackageID)),
			fmt.Sprintf("%-16s", entry.Version),
			dimStyle.Render(entry.CommandName),
		)
	}
}
