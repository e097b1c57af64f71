// Package cmd provides the CLI commands for dockerpyze.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicoloboschi/dockerpyze/internal/builder"
)

const version = "0.1.0"

// envPrefix namespaces the environment variables that set CLI flags.
const envPrefix = "DOCKERPYZE_CLI"

var rootOpts struct {
	path     string
	debug    bool
	generate bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dockerpyze",
	Short: "Build a Docker image from a Python project, without writing a Dockerfile",
	Long: `dockerpyze - containerize Python projects from pyproject.toml

dockerpyze reads pyproject.toml, works out the base image, the package
manager (uv or poetry), the files to copy and the entrypoint, renders a
multi-stage Dockerfile and builds it with the local Docker engine.

Configuration is read, highest precedence first, from DOCKERIZE_*, DPY_*
and DOCKERPYZE_* environment variables (a .env file in the project is
loaded too) and from the [tool.dpy] or [tool.dockerize] section.

COMMANDS
  dockerpyze            Build the image
    --generate          Write <path>/Dockerfile instead of building
    --debug             Print the Dockerfile and stream build output
  config                Print the resolved configuration as YAML
  dockerfile            Print the rendered Dockerfile
  update                Update dockerpyze to the latest release

Every flag can also be set with DOCKERPYZE_CLI_<FLAG>, e.g.
DOCKERPYZE_CLI_GENERATE=true.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return b.Run(cmd.Context(), builder.Options{
		Path:     rootOpts.path,
		Verbose:  rootOpts.debug,
		Generate: rootOpts.generate,
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootOpts.path, "path", "", "Project root path (default: current directory)")
	pf.BoolVar(&rootOpts.debug, "debug", false, "Debug mode: print the Dockerfile, stream build output and log resolution details")
	rootCmd.Flags().BoolVar(&rootOpts.generate, "generate", false, "Generate and persist the Dockerfile instead of building")
	cobra.CheckErr(rootCmd.RegisterFlagCompletionFunc("path", completeProjectDirs))

	rootCmd.SetVersionTemplate("dockerpyze version {{.Version}}\n")

	bindViper(rootCmd)
}

// bindViper lets DOCKERPYZE_CLI_* variables fill flags the user did not set.
func bindViper(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cobra.OnInitialize(func() {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			cobra.CheckErr(applyEnv(v, fs))
		}
	})
}

// applyEnv sets every unchanged flag in fs that has a value in v.
func applyEnv(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		val := fmt.Sprintf("%v", v.Get(f.Name))
		if val == "" {
			return
		}
		if setErr := f.Value.Set(val); setErr != nil {
			name := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			err = fmt.Errorf("invalid %s=%q: %w", name, val, setErr)
		}
	})
	return err
}
