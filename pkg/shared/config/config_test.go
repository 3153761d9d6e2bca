package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "srcmap.yml")
	content := `logger:
  level: debug
  json_format: true
rewrite:
  toolchain_env: MY_SDK
  segment: sdk/compiler/
  relative_to: map
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "MY_SDK", cfg.Rewrite.ToolchainEnv)
	assert.Equal(t, "sdk/compiler/", cfg.Rewrite.Segment)
	assert.Equal(t, RelativeToMap, cfg.Rewrite.RelativeTo)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
}

func TestLoadConfigFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "custom.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("rewrite:\n  indent: 4\n"), 0644))
	t.Setenv(ConfigEnvVar, cfgPath)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rewrite.Indent)
}

func TestLoadConfigMissingDefaultIsEmpty(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadConfig(filepath.Join(tmpDir, "missing.yml"))
	assert.Error(t, err)

	_, err = LoadConfig(tmpDir)
	assert.EqualError(t, err, "'"+tmpDir+"' is a directory, not a file")

	broken := filepath.Join(tmpDir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("rewrite: [unclosed"), 0644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}

func TestValidateConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, DefaultToolchainEnv, cfg.Rewrite.ToolchainEnv)
	assert.Equal(t, DefaultSegment, cfg.Rewrite.Segment)
	assert.Equal(t, RelativeToCwd, cfg.Rewrite.RelativeTo)
	assert.Equal(t, DefaultIndent, cfg.Rewrite.Indent)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: "YAML global config: configuration object is nil",
		},
		{
			name:    "unknown log level",
			cfg:     &Config{Logger: Logger{Level: "verbose"}},
			wantErr: `YAML global config: logger directive is invalid: unknown log level "verbose"`,
		},
		{
			name:    "unknown frame of reference",
			cfg:     &Config{Rewrite: Rewrite{RelativeTo: "build"}},
			wantErr: `YAML global config: rewrite directive is invalid: relative_to must be "cwd" or "map", got "build"`,
		},
		{
			name:    "segment with parent steps",
			cfg:     &Config{Rewrite: Rewrite{Segment: "../emsdk/"}},
			wantErr: `YAML global config: rewrite directive is invalid: segment "../emsdk/" must not contain ".." components`,
		},
		{
			name:    "absolute segment",
			cfg:     &Config{Rewrite: Rewrite{Segment: "/emsdk/emscripten"}},
			wantErr: `YAML global config: rewrite directive is invalid: segment "/emsdk/emscripten" must be relative`,
		},
		{
			name:    "indent out of range",
			cfg:     &Config{Rewrite: Rewrite{Indent: 12}},
			wantErr: "YAML global config: rewrite directive is invalid: indent must be between 1 and 8: 12",
		},
		{
			name: "valid map frame",
			cfg:  &Config{Logger: Logger{Level: "WARN"}, Rewrite: Rewrite{RelativeTo: "MAP"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, "x", SetThen("", "x"))
	assert.Equal(t, "y", SetThen("y", "x"))
	assert.Equal(t, 2, SetThen(0, 2))
	assert.Equal(t, 3, SetThen(3, 2))
}
