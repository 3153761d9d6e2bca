package rule

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
)

// UpstreamDir is the toolchain subdirectory rewritten paths point into.
const UpstreamDir = "upstream"

// parentRun matches one or more parent-directory steps.
const parentRun = `(?:\.\./)+`

// Options are the inputs of Build.
type Options struct {
	// ToolchainRoot is the toolchain installation directory.
	ToolchainRoot string
	// Base is the directory the replacement is made relative to.
	Base string
	// Segment is the toolchain-internal path that follows the parent steps, e.g. "emsdk/emscripten/".
	Segment string
}

// Rule is a compiled pattern and the replacement for every match.
type Rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Build compiles the rewrite rule once per invocation.
func Build(opts Options) (*Rule, error) {
	if strings.TrimSpace(opts.ToolchainRoot) == "" {
		return nil, serrors.NewConfigurationError("toolchain root", "must not be empty", nil)
	}
	segment := NormalizeSegment(opts.Segment)
	if segment == "" {
		return nil, serrors.NewConfigurationError("segment", "must not be empty", nil)
	}

	root, err := filepath.Abs(opts.ToolchainRoot)
	if err != nil {
		return nil, serrors.NewConfigurationError("toolchain root", "cannot be made absolute", err)
	}
	base, err := filepath.Abs(opts.Base)
	if err != nil {
		return nil, serrors.NewConfigurationError("base directory", "cannot be made absolute", err)
	}

	rel, err := filepath.Rel(base, filepath.Join(root, UpstreamDir))
	if err != nil {
		return nil, serrors.NewConfigurationError("toolchain root",
			fmt.Sprintf("cannot be expressed relative to %q", base), err)
	}

	if rel == ".." || strings.HasSuffix(rel, string(filepath.Separator)+"..") {
		// a replacement ending in parent steps could join the rest of the entry into a new match
		return nil, serrors.NewConfigurationError("toolchain root",
			fmt.Sprintf("upstream directory is an ancestor of %q", base), nil)
	}

	r := &Rule{
		pattern:     CompilePattern(segment),
		replacement: filepath.ToSlash(rel) + "/",
	}
	if r.pattern.MatchString(r.replacement) {
		return nil, serrors.NewConfigurationError("toolchain root",
			fmt.Sprintf("replacement %q matches the rewrite pattern itself", r.replacement), nil)
	}
	return r, nil
}

// CompilePattern returns the unanchored pattern matching a run of parent steps followed by segment.
func CompilePattern(segment string) *regexp.Regexp {
	return regexp.MustCompile(parentRun + regexp.QuoteMeta(NormalizeSegment(segment)))
}

// NormalizeSegment converts the segment to forward slashes with exactly one trailing slash.
func NormalizeSegment(segment string) string {
	s := strings.Trim(strings.ReplaceAll(strings.TrimSpace(segment), "\\", "/"), "/")
	if s == "" {
		return ""
	}
	return s + "/"
}

// Apply replaces every matched span of s with the replacement. Text outside
// the matches is kept and s is returned as is when nothing matches.
func (r *Rule) Apply(s string) string {
	return r.pattern.ReplaceAllLiteralString(s, r.replacement)
}

func (r *Rule) Pattern() string {
	return r.pattern.String()
}

func (r *Rule) Replacement() string {
	return r.replacement
}
