package rewrite

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srcmap-tools/srcmap/internal/remapper"
	"github.com/srcmap-tools/srcmap/internal/toolchain"
	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
	"github.com/srcmap-tools/srcmap/pkg/shared/logger"
)

// RunOptionsRewrite holds the arguments for the rewrite command.
type RunOptionsRewrite struct {
	ToolchainRoot string
	Segment       string
	RelativeTo    string
	OutputPath    string
	DryRun        bool
	ShowDiff      bool
	Force         bool
}

var (
	AppConfig           *config.Config
	exampleRewriteUsage = `  # Rewrite a source map in place using $EMSDK as the toolchain root
  srcmap rewrite build/app.wasm.map

  # Make rewritten paths relative to the source map's own directory
  srcmap rewrite --relative-to map build/app.wasm.map

  # Write the result to another file
  srcmap rewrite --output dist/app.wasm.map build/app.wasm.map

  # Show what would change without writing anything
  srcmap rewrite --dry-run --diff build/app.wasm.map

  # Use an explicit toolchain root and internal segment
  srcmap rewrite --toolchain-root /opt/emsdk --segment emsdk/emscripten/ build/app.wasm.map`
)

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewRewriteCmd creates the rewrite command.
func NewRewriteCmd() *cobra.Command {
	var options RunOptionsRewrite

	cmd := &cobra.Command{
		Use:                   "rewrite [--toolchain-root PATH] [--segment SEG] [--relative-to cwd|map] [--output PATH] [--dry-run] [--diff] [--force] MAP_FILE",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleRewriteUsage,
		Short:                 "Rewrite toolchain-internal paths in a source map",
		Long: `Rewrites every entry of the "sources" array that reaches into the toolchain through
a run of "../" steps followed by the toolchain-internal segment. The matched span is
replaced with the toolchain's upstream directory, relative to the working directory
or to the source map's directory. The file is replaced atomically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewriteCommand(cmd, args, &options)
		},
	}

	cmd.Flags().StringVarP(&options.ToolchainRoot, "toolchain-root", "t", "", "Toolchain installation root. Overrides the environment variable and the config file.")
	cmd.Flags().StringVarP(&options.Segment, "segment", "s", "", fmt.Sprintf("Toolchain-internal path segment following the parent steps (default %q).", config.DefaultSegment))
	cmd.Flags().VarP((*relativeToValue)(&options.RelativeTo), "relative-to", "r", "Frame of reference for rewritten paths: 'cwd' or 'map' (default 'cwd').")
	cmd.Flags().StringVarP(&options.OutputPath, "output", "o", "", "Write the result to this path instead of rewriting in place.")
	cmd.Flags().BoolVar(&options.DryRun, "dry-run", false, "Compute the changes without writing.")
	cmd.Flags().BoolVar(&options.ShowDiff, "diff", false, "Print a diff of every changed entry.")
	cmd.Flags().BoolVar(&options.Force, "force", false, "Write the file even when no entry changed.")
	cmd.Flags().BoolP("help", "h", false, "Show help for the rewrite command.")
	return cmd
}

// runRewriteCommand executes the rewrite command.
func runRewriteCommand(cmd *cobra.Command, args []string, options *RunOptionsRewrite) error {
	log := logger.NewLoggerWithOutput(AppConfig, "core-rewrite", cmd.ErrOrStderr())

	if err := validateRewriteArgs(options, args); err != nil {
		log.Error("invalid rewrite arguments", "error", err)
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return serrors.NewUsageError(err)
	}

	env, err := remapper.EnvironmentFromOS()
	if err != nil {
		log.Error("failed to read the environment", "error", err)
		return serrors.NewCommandError(serrors.NewIOError("getwd", ".", err))
	}
	if err := toolchain.LoadDotEnv(filepath.Join(env.WorkDir, toolchain.DotEnvFile)); err != nil {
		log.Error("failed to load .env file", "error", err)
		return serrors.NewCommandError(serrors.NewConfigurationError(toolchain.DotEnvFile, "invalid file", err))
	}

	m := remapper.New(AppConfig, env, log)
	result, err := m.Run(remapper.RunOptions{
		MapPath:       args[0],
		OutputPath:    options.OutputPath,
		ToolchainRoot: options.ToolchainRoot,
		Segment:       options.Segment,
		RelativeTo:    options.RelativeTo,
		DryRun:        options.DryRun,
		Force:         options.Force,
	})
	if err != nil {
		log.Error("rewrite command failed", "error", err)
		return serrors.NewCommandError(err)
	}

	printResult(cmd.OutOrStdout(), result, options.ShowDiff)
	return nil
}
