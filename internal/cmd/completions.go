package cmd

import (
	"github.com/spf13/cobra"
)

// completeProjectDirs limits --path completion to directories.
func completeProjectDirs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveFilterDirs
}
