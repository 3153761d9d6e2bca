package config

import (
	"fmt"
	"path"
	"strings"
)

// ValidateConfig fills defaults and checks that the configuration has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateRewriteConfig(&cfg.Rewrite); err != nil {
		return fmt.Errorf("YAML global config: rewrite directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level name.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	if loggerConfig == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	switch strings.ToUpper(loggerConfig.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	}
	return fmt.Errorf("unknown log level %q", loggerConfig.Level)
}

// ValidateRewriteConfig applies defaults to the rewrite section and validates it.
func ValidateRewriteConfig(rewriteConfig *Rewrite) error {
	if rewriteConfig == nil {
		return fmt.Errorf("rewrite configuration is nil")
	}

	rewriteConfig.ToolchainEnv = SetThen(strings.TrimSpace(rewriteConfig.ToolchainEnv), DefaultToolchainEnv)
	rewriteConfig.Segment = SetThen(strings.TrimSpace(rewriteConfig.Segment), DefaultSegment)
	rewriteConfig.RelativeTo = SetThen(strings.ToLower(strings.TrimSpace(rewriteConfig.RelativeTo)), RelativeToCwd)
	rewriteConfig.Indent = SetThen(rewriteConfig.Indent, DefaultIndent)

	if err := ValidateRelativeTo(rewriteConfig.RelativeTo); err != nil {
		return err
	}
	if err := ValidateSegment(rewriteConfig.Segment); err != nil {
		return err
	}
	if rewriteConfig.Indent < 1 || rewriteConfig.Indent > 8 {
		return fmt.Errorf("indent must be between 1 and 8: %d", rewriteConfig.Indent)
	}
	return nil
}

// ValidateRelativeTo checks the frame of reference name.
func ValidateRelativeTo(relativeTo string) error {
	switch relativeTo {
	case RelativeToCwd, RelativeToMap:
		return nil
	}
	return fmt.Errorf("relative_to must be %q or %q, got %q", RelativeToCwd, RelativeToMap, relativeTo)
}

// ValidateSegment checks that the toolchain-internal segment is a relative path without parent steps.
func ValidateSegment(segment string) error {
	s := strings.Trim(strings.ReplaceAll(segment, "\\", "/"), "/")
	if s == "" {
		return fmt.Errorf("segment must not be empty")
	}
	if path.IsAbs(segment) || strings.HasPrefix(segment, "/") {
		return fmt.Errorf("segment %q must be relative", segment)
	}
	for _, part := range strings.Split(s, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("segment %q must not contain %q components", segment, part)
		}
	}
	return nil
}
