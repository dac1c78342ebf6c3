package yaml_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/foldsort/pkg/yaml"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"offset": {"type": "integer", "minimum": 0},
		"rules": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"match": {"type": "string"},
					"profile": {"type": "string"}
				},
				"required": ["match", "profile"]
			}
		}
	},
	"required": ["name"],
	"additionalProperties": false
}`

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		errMsg     string
		schemaData []byte
	}{
		"valid schema": {
			schemaData: []byte(testSchema),
		},
		"invalid json": {
			schemaData: []byte(`{"invalid": json}`),
			errMsg:     "unmarshal schema",
		},
		"invalid schema": {
			schemaData: []byte(`{"type": "invalid_type"}`),
			errMsg:     "compile schema",
		},
		"empty schema": {
			schemaData: []byte(`{}`),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			validator, err := yaml.NewValidator("test", tc.schemaData)
			if tc.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, validator)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, validator)
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test", []byte(testSchema))

	tcs := map[string]struct {
		data     any
		wantPath string
		errMsg   string
	}{
		"valid": {
			data: map[string]any{"name": "x", "offset": 1},
		},
		"missing required field": {
			data:     map[string]any{"offset": 1},
			wantPath: "$",
			errMsg:   "missing property 'name'",
		},
		"negative offset": {
			data:     map[string]any{"name": "x", "offset": -1},
			wantPath: "$.offset",
		},
		"unknown field": {
			data:     map[string]any{"name": "x", "extra": true},
			wantPath: "$",
			errMsg:   "additional properties 'extra' not allowed",
		},
		"bad rule": {
			data: map[string]any{
				"name": "x",
				"rules": []any{
					map[string]any{"match": "true", "profile": "a"},
					map[string]any{"match": 1, "profile": "b"},
				},
			},
			wantPath: "$.rules[1].match",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.Validate(tc.data)
			if tc.wantPath == "" {
				require.NoError(t, err)

				return
			}

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			require.NotNil(t, yamlErr.Path)
			assert.Equal(t, tc.wantPath, yamlErr.Path.String())
			assert.NotContains(t, err.Error(), "jsonschema validation failed")
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	path := yaml.NewPathBuilder().Root().Child("sort").Child("offset").Build()

	tcs := map[string]struct {
		err      *yaml.Error
		contains []string
	}{
		"without path": {
			err:      yaml.NewError(errors.New("bad value")),
			contains: []string{"bad value"},
		},
		"path without source": {
			err:      yaml.NewError(errors.New("bad value"), yaml.WithPath(path)),
			contains: []string{"error at $.sort.offset: bad value"},
		},
		"path with source": {
			err: yaml.NewError(errors.New("bad value"),
				yaml.WithPath(path),
				yaml.WithSource([]byte("sort:\n  offset: -1\n")),
			),
			contains: []string{"error at $.sort.offset: bad value", "offset: -1"},
		},
		"nil error": {
			err:      &yaml.Error{},
			contains: []string{""},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.err.Error()
			for _, want := range tc.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestErrorWrapper_Wrap(t *testing.T) {
	t.Parallel()

	ew := yaml.NewErrorWrapper(yaml.WithSource([]byte("a: b\n")))

	plain := errors.New("plain")
	assert.Equal(t, plain, ew.Wrap(plain))
	require.NoError(t, ew.Wrap(nil))

	wrapped := ew.Wrap(yaml.NewError(errors.New("x")))

	var yamlErr *yaml.Error
	require.ErrorAs(t, wrapped, &yamlErr)
	assert.Equal(t, []byte("a: b\n"), yamlErr.Source)
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		target  error
		input   string
		wantErr bool
	}{
		"valid": {
			input: "a: [1, 2]\n",
		},
		"syntax error": {
			input:   "a: [1, 2",
			wantErr: true,
		},
		"duplicate key": {
			input:   "profiles:\n  md: {}\n  md: {}\n",
			wantErr: true,
		},
		"empty": {
			wantErr: true,
			target:  yaml.ErrEmptyDocument,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var v map[string]any

			err := yaml.NewDecoder(stringReader(tc.input)).Decode(&v)
			if !tc.wantErr {
				require.NoError(t, err)

				return
			}

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			assert.NotEmpty(t, yamlErr.Error())

			if tc.target != nil {
				require.ErrorIs(t, err, tc.target)
			}
		})
	}
}
