package rewrite

import (
	"fmt"
	"strings"

	"github.com/srcmap-tools/srcmap/pkg/shared/config"
)

// validateRewriteArgs validates the arguments provided to the rewrite command.
func validateRewriteArgs(options *RunOptionsRewrite, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one source map path must be specified, got %d", len(args))
	}
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("the source map path must not be empty")
	}

	if options.RelativeTo != "" {
		options.RelativeTo = strings.ToLower(strings.TrimSpace(options.RelativeTo))
		if err := config.ValidateRelativeTo(options.RelativeTo); err != nil {
			return fmt.Errorf("the 'relative-to' flag is invalid: %w", err)
		}
	}

	if options.Segment != "" {
		if err := config.ValidateSegment(options.Segment); err != nil {
			return fmt.Errorf("the 'segment' flag is invalid: %w", err)
		}
	}

	if options.Force && options.DryRun {
		return fmt.Errorf("you cannot use the 'force' and 'dry-run' flags at the same time")
	}

	return nil
}
