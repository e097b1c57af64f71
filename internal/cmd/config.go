package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nicoloboschi/dockerpyze/internal/builder"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	Long: `Resolve the project configuration and print it as YAML.

The provenance block names the source of every resolved field: an
environment prefix (env:DPY), the manifest tool section, "inferred" for
values derived from pyproject.toml or lock files, or "default".

Notes produced while resolving go to stderr, so the output can be piped.

Examples:
  dockerpyze config
  DPY_PORTS="5000 5001" dockerpyze config --path ./service`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	plan, err := b.Plan(builder.Options{Path: rootOpts.path, Verbose: rootOpts.debug})
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(plan.Config); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return enc.Close()
}
