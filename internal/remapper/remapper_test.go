package remapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmap-tools/srcmap/internal/sourcemap"
	"github.com/srcmap-tools/srcmap/pkg/shared/config"
	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
)

const inputMap = `{"version":3,"sources":["../../../../emsdk/emscripten/system/lib/libc/printf.c","src/main.c"],"names":[],"mappings":"AACA"}`

type fixture struct {
	root    string
	work    string
	mapPath string
	emsdk   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		work:    filepath.Join(root, "project", "build"),
		emsdk:   filepath.Join(root, "tools", "emsdk"),
		mapPath: filepath.Join(root, "project", "build", "out", "app.wasm.map"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(f.emsdk, "upstream"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Dir(f.mapPath), 0755))
	require.NoError(t, os.WriteFile(f.mapPath, []byte(inputMap), 0644))
	return f
}

func (f fixture) remapper(cfg *config.Config, vars map[string]string) *Remapper {
	env := Environment{
		Getenv:  func(k string) string { return vars[k] },
		WorkDir: f.work,
	}
	return New(cfg, env, hclog.NewNullLogger())
}

func TestRunRelativeToCwd(t *testing.T) {
	f := newFixture(t)
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})

	res, err := m.Run(RunOptions{MapPath: filepath.Join("out", "app.wasm.map")})
	require.NoError(t, err)

	assert.True(t, res.Written)
	assert.Equal(t, f.mapPath, res.OutputPath)
	assert.Equal(t, "../../tools/emsdk/upstream/", res.Replacement)
	assert.Equal(t, 1, res.Stats.Rewritten)

	doc, err := sourcemap.Load(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"../../tools/emsdk/upstream/system/lib/libc/printf.c", "src/main.c"}, doc.Sources())
	assert.Equal(t, "AACA", doc.Field("mappings").String())
}

func TestRunRelativeToMap(t *testing.T) {
	f := newFixture(t)
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})

	res, err := m.Run(RunOptions{MapPath: f.mapPath, RelativeTo: config.RelativeToMap})
	require.NoError(t, err)

	assert.Equal(t, config.RelativeToMap, res.RelativeTo)
	assert.Equal(t, "../../../tools/emsdk/upstream/", res.Replacement)
}

func TestRunToOutputPath(t *testing.T) {
	f := newFixture(t)
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})
	output := filepath.Join(f.work, "fixed", "app.wasm.map")

	res, err := m.Run(RunOptions{MapPath: f.mapPath, OutputPath: output})
	require.NoError(t, err)
	assert.True(t, res.Written)

	original, err := os.ReadFile(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, inputMap, string(original))

	doc, err := sourcemap.Load(output)
	require.NoError(t, err)
	assert.Equal(t, "../../tools/emsdk/upstream/system/lib/libc/printf.c", doc.Sources()[0])
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t)
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})

	res, err := m.Run(RunOptions{MapPath: f.mapPath, DryRun: true})
	require.NoError(t, err)

	assert.False(t, res.Written)
	assert.Equal(t, 1, res.Stats.Rewritten)
	got, err := os.ReadFile(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, inputMap, string(got))
}

func TestRunNoMatchLeavesFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.mapPath, []byte(`{"sources":["src/main.c"]}`), 0644))
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})

	res, err := m.Run(RunOptions{MapPath: f.mapPath})
	require.NoError(t, err)
	assert.False(t, res.Written)

	res, err = m.Run(RunOptions{MapPath: f.mapPath, Force: true})
	require.NoError(t, err)
	assert.True(t, res.Written)
	got, err := os.ReadFile(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"sources\": [\n    \"src/main.c\"\n  ]\n}\n", string(got))
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	m := f.remapper(nil, map[string]string{"EMSDK": f.emsdk})

	_, err := m.Run(RunOptions{MapPath: f.mapPath})
	require.NoError(t, err)
	first, err := os.ReadFile(f.mapPath)
	require.NoError(t, err)

	res, err := m.Run(RunOptions{MapPath: f.mapPath})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Rewritten)

	second, err := os.ReadFile(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRunCustomSegmentFromConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.mapPath, []byte(`{"sources":["../../sdk/compiler/a.c"]}`), 0644))
	cfg := &config.Config{Rewrite: config.Rewrite{
		ToolchainEnv:  "MY_SDK",
		ToolchainRoot: "/ignored",
		Segment:       "sdk/compiler",
	}}
	m := f.remapper(cfg, map[string]string{"MY_SDK": f.emsdk})

	res, err := m.Run(RunOptions{MapPath: f.mapPath})
	require.NoError(t, err)
	assert.Equal(t, f.emsdk, res.ToolchainRoot)

	doc, err := sourcemap.Load(f.mapPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"../../tools/emsdk/upstream/a.c"}, doc.Sources())
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		opts     func(f fixture) RunOptions
		content  *string
		wantCode int
	}{
		{
			name:     "missing toolchain root",
			vars:     map[string]string{},
			opts:     func(f fixture) RunOptions { return RunOptions{MapPath: f.mapPath} },
			wantCode: serrors.ExitCodeConfiguration,
		},
		{
			name:     "invalid frame of reference",
			opts:     func(f fixture) RunOptions { return RunOptions{MapPath: f.mapPath, RelativeTo: "build"} },
			wantCode: serrors.ExitCodeConfiguration,
		},
		{
			name:     "missing map",
			opts:     func(f fixture) RunOptions { return RunOptions{MapPath: filepath.Join(f.work, "nope.map")} },
			wantCode: serrors.ExitCodeNotFound,
		},
		{
			name:     "broken map",
			content:  strPtr(`{"sources": [`),
			opts:     func(f fixture) RunOptions { return RunOptions{MapPath: f.mapPath} },
			wantCode: serrors.ExitCodeParse,
		},
		{
			name:     "output is a directory",
			opts:     func(f fixture) RunOptions { return RunOptions{MapPath: f.mapPath, OutputPath: f.work} },
			wantCode: serrors.ExitCodeIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(f.mapPath, []byte(*tt.content), 0644))
			}
			before, err := os.ReadFile(f.mapPath)
			require.NoError(t, err)

			vars := tt.vars
			if vars == nil {
				vars = map[string]string{"EMSDK": f.emsdk}
			}
			res, err := f.remapper(nil, vars).Run(tt.opts(f))
			assert.Nil(t, res)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, serrors.ExitCodeFor(err))

			after, err := os.ReadFile(f.mapPath)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after), "target is untouched")
		})
	}
}

func strPtr(s string) *string { return &s }
