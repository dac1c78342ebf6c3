package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/foldsort/api/v1beta1/configs"
	"github.com/macropower/foldsort/pkg/config"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

const validConfig = `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
sort:
  offset: 1
fold:
  method: indent
  shiftWidth: 2
profiles:
  md:
    method: expr
    expr: 'line.startsWith("#") ? ">1" : "="'
rules:
  - match: 'pathExt(path) == ".md"'
    profile: md
`

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, validConfig)
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return "/non/existent/file.yaml"
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), configs.New, configs.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		errMsg  string
		wantErr bool
	}{
		"valid config": {
			input: validConfig,
		},
		"invalid yaml": {
			input: `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
rules: [unclosed
`,
			wantErr: true,
			errMsg:  "sequence end token ']' not found",
		},
		"missing required fields": {
			input: `sort:
  offset: 1
`,
			wantErr: true,
			errMsg:  "missing properties 'apiVersion', 'kind'",
		},
		"unknown field": {
			input: `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
folds:
  method: indent
`,
			wantErr: true,
			errMsg:  "folds",
		},
		"unknown method": {
			input: `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
fold:
  method: manual
`,
			wantErr: true,
			errMsg:  "$.fold.method",
		},
		"negative offset": {
			input: `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
sort:
  offset: -1
`,
			wantErr: true,
			errMsg:  "$.sort.offset",
		},
		"wrong api version": {
			input: `apiVersion: example.com/v1
kind: Configuration
`,
			wantErr: true,
			errMsg:  "$.apiVersion",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator)

			err := cl.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte(validConfig), configs.New, configs.DefaultValidator)

	cfg, err := cl.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Sort.Offset)
	assert.Equal(t, foldmethod.MethodIndent, cfg.Fold.Method)
	assert.Equal(t, 2, cfg.Fold.ShiftWidth)
	assert.Equal(t, foldmethod.DefaultTabStop, cfg.Fold.TabStop, "defaults are applied")
	require.Contains(t, cfg.Profiles, "md")
	assert.Equal(t, foldmethod.DefaultMarker, cfg.Profiles["md"].Marker)
	require.Len(t, cfg.Rules, 1)

	opts, profile := cfg.FoldOptionsFor("README.md", "")
	assert.Equal(t, "md", profile)
	assert.Equal(t, foldmethod.MethodExpr, opts.Method)

	opts, profile = cfg.FoldOptionsFor("main.go", "")
	assert.Empty(t, profile)
	assert.Equal(t, foldmethod.MethodIndent, opts.Method)
}

func TestLoader_LoadInvalidYAML(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte("sort: [unclosed\n"), configs.New, configs.DefaultValidator)

	cfg, err := cl.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte("anything: goes\n"), configs.New, nil, config.WithValidator(nil))
	require.NoError(t, cl.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing file uses defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, configs.New(), cfg)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.LoadConfig(createTempFile(t, validConfig))
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Sort.Offset)
	})

	t.Run("rule with unknown profile", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
rules:
  - match: 'true'
    profile: missing
`)

		_, err := config.LoadConfig(path)
		require.ErrorIs(t, err, configs.ErrUnknownProfile)
	})

	t.Run("schema error", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, `apiVersion: foldsort.jacobcolvin.com/v1beta1
kind: Configuration
sort:
  offset: "one"
`)

		_, err := config.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestLoader_RoundTrip(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, configs.WriteDefault(configPath, false))

	cl, err := config.NewLoaderFromFile(configPath, configs.New, configs.DefaultValidator)
	require.NoError(t, err)
	require.NoError(t, cl.Validate())

	cfg, err := cl.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	b, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cl = config.NewLoaderFromBytes(b, configs.New, configs.DefaultValidator)
	require.NoError(t, cl.Validate())

	got, err := cl.Load()
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, cfg.Fold, got.Fold)
	assert.Equal(t, cfg.Profiles, got.Profiles)
	assert.Len(t, got.Rules, len(cfg.Rules))
}

// createTempFile creates a temporary file with the given content.
func createTempFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)

	require.NoError(t, tmpFile.Close())

	return tmpFile.Name()
}
