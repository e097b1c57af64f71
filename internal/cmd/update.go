package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicoloboschi/dockerpyze/internal/ui"
	"github.com/nicoloboschi/dockerpyze/internal/update"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update dockerpyze to the latest version",
	Long: `Update dockerpyze to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  dockerpyze update           # Update to latest version
  dockerpyze update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var (
	checkOnly bool
)

// changelogLines caps the release notes shown after a check or update.
const changelogLines = 10

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	out := ui.NewConsole(cmd.OutOrStdout())
	out.Info("Current version: %s (%s)", version, update.PlatformInfo())
	out.Info("Checking for updates...")

	if checkOnly {
		release, available, err := update.Check(cmd.Context(), version)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !available {
			out.Success("You're running the latest version!")
			return nil
		}

		out.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		out.Print("\n")
		out.Info("To update, run: dockerpyze update")
		printChangelog(out, release)
		return nil
	}

	release, err := update.Apply(cmd.Context(), version)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if release == nil {
		out.Success("You're already running the latest version!")
		return nil
	}

	out.Print("\n")
	out.Success("Successfully updated to version %s!", release.Version)
	printChangelog(out, release)
	return nil
}

func printChangelog(out *ui.Console, release *update.Release) {
	lines, more := release.Excerpt(changelogLines)
	if len(lines) == 0 {
		return
	}

	out.Print("\n")
	out.Hint("What's new:")
	for _, line := range lines {
		out.Print("  " + line + "\n")
	}
	if more > 0 {
		out.Print(fmt.Sprintf("  ... (%d more lines)\n", more))
	}
}
