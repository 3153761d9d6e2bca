package remapper

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/srcmap-tools/srcmap/internal/rule"
	"github.com/srcmap-tools/srcmap/internal/sourcemap"
	"github.com/srcmap-tools/srcmap/internal/toolchain"
	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
	"github.com/srcmap-tools/srcmap/pkg/shared/files"
)

// RunOptions holds the per-invocation inputs of a rewrite. Empty fields fall back to the configuration.
type RunOptions struct {
	MapPath       string // Source map to read
	OutputPath    string // Destination; defaults to MapPath
	ToolchainRoot string // Overrides the environment and the configured root
	Segment       string // Toolchain-internal segment following the parent steps
	RelativeTo    string // "cwd" or "map"
	DryRun        bool   // Compute the result without writing
	Force         bool   // Write even when no entry changed
}

// Environment is the process state read once at the command boundary.
type Environment struct {
	Getenv  func(string) string
	WorkDir string
}

// EnvironmentFromOS captures the current process environment and working directory.
func EnvironmentFromOS() (Environment, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Environment{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return Environment{Getenv: os.Getenv, WorkDir: wd}, nil
}

// Result describes a completed rewrite.
type Result struct {
	MapPath         string
	OutputPath      string
	ToolchainRoot   string
	ToolchainSource string
	RelativeTo      string
	Pattern         string
	Replacement     string
	Stats           *sourcemap.Stats
	Written         bool
	Document        *sourcemap.Document
}

// Remapper runs the locate-root, build-rule, load, rewrite, save pipeline.
type Remapper struct {
	cfg    *config.Config
	env    Environment
	logger hclog.Logger
}

// New creates a Remapper. A nil configuration means defaults.
func New(cfg *config.Config, env Environment, logger hclog.Logger) *Remapper {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if env.Getenv == nil {
		env.Getenv = func(string) string { return "" }
	}
	return &Remapper{cfg: cfg, env: env, logger: logger}
}

// settings merges command line overrides with the configuration.
func (m *Remapper) settings(opts RunOptions) (config.Rewrite, error) {
	s := m.cfg.Rewrite
	s.Segment = config.SetThen(opts.Segment, s.Segment)
	s.RelativeTo = config.SetThen(opts.RelativeTo, s.RelativeTo)
	if err := config.ValidateRewriteConfig(&s); err != nil {
		return s, serrors.NewConfigurationError("rewrite", "invalid settings", err)
	}
	return s, nil
}

func (m *Remapper) abs(path string) string {
	if filepath.IsAbs(path) || m.env.WorkDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(m.env.WorkDir, path)
}

// BuildRule resolves the toolchain root and compiles the rewrite rule for a document written to outputPath.
func (m *Remapper) BuildRule(opts RunOptions, outputPath string) (*rule.Rule, *toolchain.Root, config.Rewrite, error) {
	s, err := m.settings(opts)
	if err != nil {
		return nil, nil, s, err
	}

	root, err := toolchain.Resolve(m.cfg, opts.ToolchainRoot, m.env.Getenv)
	if err != nil {
		return nil, nil, s, err
	}
	m.logger.Debug("toolchain root resolved", "path", root.Path, "source", root.Source)

	base := m.env.WorkDir
	if s.RelativeTo == config.RelativeToMap {
		base = filepath.Dir(outputPath)
	}

	r, err := rule.Build(rule.Options{
		ToolchainRoot: m.abs(root.Path),
		Base:          base,
		Segment:       s.Segment,
	})
	if err != nil {
		return nil, nil, s, err
	}
	m.logger.Debug("rewrite rule built", "pattern", r.Pattern(), "replacement", r.Replacement(), "relative_to", s.RelativeTo)

	if info, err := os.Stat(filepath.Join(m.abs(root.Path), rule.UpstreamDir)); err != nil || !info.IsDir() {
		m.logger.Warn("toolchain upstream directory not found, rewritten paths may not resolve", "path", filepath.Join(root.Path, rule.UpstreamDir))
	}
	return r, root, s, nil
}

// Run executes the rewrite described by opts. Each step aborts the remaining ones on failure.
func (m *Remapper) Run(opts RunOptions) (*Result, error) {
	if opts.MapPath == "" {
		return nil, fmt.Errorf("source map path must be specified")
	}
	mapPath := m.abs(opts.MapPath)
	outputPath := mapPath
	if opts.OutputPath != "" {
		outputPath = m.abs(opts.OutputPath)
	}

	r, root, s, err := m.BuildRule(opts, outputPath)
	if err != nil {
		return nil, err
	}

	doc, err := sourcemap.Load(mapPath)
	if err != nil {
		return nil, err
	}

	updated, stats, err := sourcemap.Rewrite(doc, r)
	if err != nil {
		return nil, serrors.NewParseError(mapPath, "failed to rewrite sources", err)
	}
	m.logger.Debug("sources rewritten", "total", stats.Total, "rewritten", stats.Rewritten)

	result := &Result{
		MapPath:         mapPath,
		OutputPath:      outputPath,
		ToolchainRoot:   root.Path,
		ToolchainSource: root.Source,
		RelativeTo:      s.RelativeTo,
		Pattern:         r.Pattern(),
		Replacement:     r.Replacement(),
		Stats:           stats,
		Document:        updated,
	}

	switch {
	case opts.DryRun:
		m.logger.Info("dry run, nothing written", "path", outputPath)
		return result, nil
	case stats.Rewritten == 0 && outputPath == mapPath && !opts.Force:
		m.logger.Info("no source paths matched, file left unchanged", "path", mapPath)
		return result, nil
	}

	if outputPath != mapPath {
		if err := files.CreateFolderIfNotExists(filepath.Dir(outputPath)); err != nil {
			return nil, serrors.NewIOError("create output folder", filepath.Dir(outputPath), err)
		}
	}
	if err := sourcemap.Save(outputPath, updated, s.Indent); err != nil {
		return nil, err
	}
	result.Written = true
	return result, nil
}
