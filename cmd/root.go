package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/srcmap-tools/srcmap/cmd/inspect"
	"github.com/srcmap-tools/srcmap/cmd/rewrite"
	"github.com/srcmap-tools/srcmap/cmd/version"
	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:                   "srcmap [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Srcmap rewrites toolchain paths inside source map files.",
		Long: `Srcmap normalizes source maps produced by a toolchain build. Paths that point
into the toolchain's internals through a run of "../" steps are rewritten to the
toolchain's upstream directory so that debuggers can resolve them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $%s or ./%s)", config.ConfigEnvVar, config.DefaultConfigFile))

	rootCmd.AddCommand(rewrite.NewRewriteCmd())
	rootCmd.AddCommand(inspect.NewInspectCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return execute(newRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(rootCmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error executing command: %v\n", err)
		return serrors.ExitCodeFor(err)
	}
	return serrors.ExitCodeOK
}

func initConfig() error {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		return serrors.NewConfigurationError("config", "failed to load config file", err)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return serrors.NewConfigurationError("config", "invalid config file", err)
	}

	rewrite.Init(AppConfig)
	inspect.Init(AppConfig)
	version.Init(AppConfig)
	return nil
}
