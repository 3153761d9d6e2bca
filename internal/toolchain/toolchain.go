package toolchain

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
	"github.com/srcmap-tools/srcmap/pkg/shared/files"
)

// DotEnvFile is read from the working directory before the environment is consulted.
const DotEnvFile = ".env"

// Where a toolchain root was found.
const (
	SourceFlag   = "flag"
	SourceEnv    = "env"
	SourceConfig = "config"
)

// Root is a resolved toolchain installation directory.
type Root struct {
	Path   string
	Source string
}

// LoadDotEnv loads variables from path when the file exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}
	return nil
}

// Resolve finds the toolchain root: an explicit override first, then the
// environment variable named in the configuration, then the configured path.
func Resolve(cfg *config.Config, override string, getenv func(string) string) (*Root, error) {
	envName := config.DefaultToolchainEnv
	configured := ""
	if cfg != nil {
		envName = config.SetThen(cfg.Rewrite.ToolchainEnv, envName)
		configured = cfg.Rewrite.ToolchainRoot
	}

	root := &Root{}
	switch {
	case strings.TrimSpace(override) != "":
		root.Path, root.Source = override, SourceFlag
	case strings.TrimSpace(getenv(envName)) != "":
		root.Path, root.Source = getenv(envName), SourceEnv
	case strings.TrimSpace(configured) != "":
		root.Path, root.Source = configured, SourceConfig
	default:
		return nil, serrors.NewConfigurationError(envName, "environment variable is not set", nil)
	}

	expanded, err := files.ExpandPath(strings.TrimSpace(root.Path))
	if err != nil {
		return nil, serrors.NewConfigurationError(envName, "failed to expand toolchain root", err)
	}
	root.Path = expanded
	return root, nil
}
