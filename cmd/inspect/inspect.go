package inspect

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/srcmap-tools/srcmap/internal/rule"
	"github.com/srcmap-tools/srcmap/internal/sourcemap"
	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
	"github.com/srcmap-tools/srcmap/pkg/shared/logger"
)

// RunOptionsInspect holds the arguments for the inspect command.
type RunOptionsInspect struct {
	Segment string
	All     bool
}

var (
	AppConfig           *config.Config
	exampleInspectUsage = `  # Summarize a source map and list the entries the rewrite command would change
  srcmap inspect build/app.wasm.map

  # List every source entry
  srcmap inspect --all build/app.wasm.map`
)

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	var options RunOptionsInspect

	cmd := &cobra.Command{
		Use:                   "inspect [--segment SEG] [--all] MAP_FILE",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleInspectUsage,
		Short:                 "Summarize a source map without modifying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectCommand(cmd, args, &options)
		},
	}

	cmd.Flags().StringVarP(&options.Segment, "segment", "s", "", fmt.Sprintf("Toolchain-internal path segment to look for (default %q).", config.DefaultSegment))
	cmd.Flags().BoolVarP(&options.All, "all", "a", false, "List every source entry, not only toolchain-internal ones.")
	cmd.Flags().BoolP("help", "h", false, "Show help for the inspect command.")
	return cmd
}

func runInspectCommand(cmd *cobra.Command, args []string, options *RunOptionsInspect) error {
	log := logger.NewLoggerWithOutput(AppConfig, "core-inspect", cmd.ErrOrStderr())

	if len(args) != 1 {
		err := fmt.Errorf("exactly one source map path must be specified, got %d", len(args))
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return serrors.NewUsageError(err)
	}

	segment := options.Segment
	if segment == "" && AppConfig != nil {
		segment = AppConfig.Rewrite.Segment
	}
	segment = config.SetThen(segment, config.DefaultSegment)
	if err := config.ValidateSegment(segment); err != nil {
		return serrors.NewUsageError(fmt.Errorf("the 'segment' flag is invalid: %w", err))
	}

	doc, err := sourcemap.Load(args[0])
	if err != nil {
		log.Error("failed to load source map", "path", args[0], "error", err)
		return serrors.NewCommandError(err)
	}

	printSummary(cmd.OutOrStdout(), args[0], doc, segment, options.All)
	return nil
}

func printSummary(w io.Writer, path string, doc *sourcemap.Document, segment string, all bool) {
	pattern := rule.CompilePattern(segment)

	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Size: %d bytes\n", len(doc.Bytes()))
	if v := doc.Field("version"); v.Exists() {
		fmt.Fprintf(w, "Version: %s\n", v.Raw)
	}
	if f := doc.Field("file"); f.Exists() {
		fmt.Fprintf(w, "Generated file: %s\n", f.String())
	}
	if r := doc.Field("sourceRoot"); r.Exists() && r.String() != "" {
		fmt.Fprintf(w, "Source root: %s\n", r.String())
	}
	fmt.Fprintf(w, "Sources: %d\n", doc.Len())
	if c := doc.Field("sourcesContent"); c.IsArray() {
		fmt.Fprintf(w, "Sources content: %d\n", len(c.Array()))
	}
	if n := doc.Field("names"); n.IsArray() {
		fmt.Fprintf(w, "Names: %d\n", len(n.Array()))
	}
	if m := doc.Field("mappings"); m.Exists() {
		fmt.Fprintf(w, "Mappings: %d bytes\n", len(m.String()))
	}

	matched := 0
	for i, src := range doc.Sources() {
		hit := pattern.MatchString(src)
		if hit {
			matched++
		}
		if all || hit {
			marker := " "
			if hit {
				marker = "*"
			}
			fmt.Fprintf(w, "%s sources[%d]: %s\n", marker, i, src)
		}
	}
	fmt.Fprintf(w, "Toolchain-internal sources (%s): %d\n", pattern, matched)
}
