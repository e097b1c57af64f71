package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicoloboschi/dockerpyze/internal/builder"
)

var dockerfileCmd = &cobra.Command{
	Use:   "dockerfile",
	Short: "Print the rendered Dockerfile",
	Long: `Render the Dockerfile for the project and print it to stdout without
writing it or building. Use --generate on the root command to persist it.

Examples:
  dockerpyze dockerfile > Dockerfile.preview
  dockerpyze dockerfile --path ./service | docker build -f - ./service`,
	Args: cobra.NoArgs,
	RunE: runDockerfile,
}

func init() {
	rootCmd.AddCommand(dockerfileCmd)
}

func runDockerfile(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	plan, err := b.Plan(builder.Options{Path: rootOpts.path, Verbose: rootOpts.debug})
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), plan.Dockerfile)
	return err
}
