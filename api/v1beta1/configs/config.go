// Package configs provides the Configuration type for foldsort.
package configs

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/foldsort/api"
	"github.com/macropower/foldsort/api/v1beta1"
	"github.com/macropower/foldsort/pkg/foldmethod"
	"github.com/macropower/foldsort/pkg/rule"
	"github.com/macropower/foldsort/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/main.go -o configs.v1beta1.json

// Kind is the kind of the foldsort configuration.
const Kind = "Configuration"

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for configurations.
	ValidKinds = []string{Kind}

	// ProjectFileNames are searched for in the directory of a sorted file and
	// its parents, before falling back to [GetPath].
	ProjectFileNames = []string{".foldsort.yaml", ".foldsort.yml"}

	// DefaultValidator validates configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", schemaJSON)

	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknownProfile = errors.New("unknown profile")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the foldsort configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Sort configures how segments are ordered.
	Sort *SortOptions `json:"sort,omitempty" jsonschema:"title=Sort Options"`
	// Fold configures how folds are derived when no rule matches.
	Fold *foldmethod.Options `json:"fold,omitempty" jsonschema:"title=Fold Options"`
	// Profiles are named fold options, selected by rules.
	Profiles map[string]*foldmethod.Options `json:"profiles,omitempty" jsonschema:"title=Fold Profiles"`
	// Rules select a profile for a file. The first matching rule wins.
	Rules []*rule.Rule `json:"rules,omitempty" jsonschema:"title=Profile Rules"`

	v1beta1.TypeMeta `json:",inline"`
}

// SortOptions configure segment ordering.
type SortOptions struct {
	// Offset is the zero-based line within each segment holding its key.
	Offset int `json:"offset,omitempty" jsonschema:"title=Key Offset,minimum=0"`
	// IgnoreCase compares keys after Unicode case folding.
	IgnoreCase bool `json:"ignoreCase,omitempty" jsonschema:"title=Ignore Case"`
	// Reverse sorts keys in descending order.
	Reverse bool `json:"reverse,omitempty" jsonschema:"title=Reverse"`
}

// New creates a new [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Sort == nil {
		c.Sort = &SortOptions{}
	}

	if c.Fold == nil {
		c.Fold = &foldmethod.Options{}
	}

	*c.Fold = c.Fold.WithDefaults()

	if c.Profiles == nil {
		c.Profiles = map[string]*foldmethod.Options{}
	}

	for name, p := range c.Profiles {
		if p == nil {
			p = &foldmethod.Options{}
		}

		opts := p.WithDefaults()
		c.Profiles[name] = &opts
	}
}

// Validate validates the configuration, and compiles rule expressions.
func (c *Config) Validate() error {
	err := c.TypeMeta.Check(v1beta1.ValidAPIVersions, ValidKinds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Sort != nil && c.Sort.Offset < 0 {
		return fmt.Errorf("%w: sort.offset %d is negative", ErrInvalidConfig, c.Sort.Offset)
	}

	if c.Fold != nil {
		err = c.Fold.Validate()
		if err != nil {
			return fmt.Errorf("%w: fold: %w", ErrInvalidConfig, err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Profiles)) {
		p := c.Profiles[name]
		if p == nil {
			continue
		}

		err = p.Validate()
		if err != nil {
			return fmt.Errorf("%w: profile %q: %w", ErrInvalidConfig, name, err)
		}
	}

	for i, r := range c.Rules {
		if _, ok := c.Profiles[r.Profile]; !ok {
			return fmt.Errorf("%w: rules[%d]: %w %q", ErrInvalidConfig, i, ErrUnknownProfile, r.Profile)
		}

		err = r.CompileMatch()
		if err != nil {
			return fmt.Errorf("%w: rules[%d]: %w", ErrInvalidConfig, i, err)
		}
	}

	return nil
}

// FoldOptionsFor returns the fold options for a file, and the name of the
// profile they came from. The profile name is empty when no rule matched.
// Validate must be called first.
func (c *Config) FoldOptionsFor(path, firstLine string) (foldmethod.Options, string) {
	for _, r := range c.Rules {
		if !r.Matches(path, firstLine) {
			continue
		}

		if p := c.Profiles[r.Profile]; p != nil {
			return p.WithDefaults(), r.Profile
		}
	}

	if c.Fold == nil {
		return foldmethod.Options{}.WithDefaults(), ""
	}

	return c.Fold.WithDefaults(), ""
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (foldmethod.Options, error) {
	p, ok := c.Profiles[name]
	if !ok || p == nil {
		return foldmethod.Options{}, fmt.Errorf("%w %q", ErrUnknownProfile, name)
	}

	return p.WithDefaults(), nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default config.yaml.
func DefaultYAML() []byte {
	return slices.Clone(defaultConfigYAML)
}

// GetPath returns the path to the user configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}

// FindPath returns the configuration file for target: the nearest project
// file, or the user configuration file.
func FindPath(target string) (string, error) {
	if target != "" {
		path, err := api.FindConfigFile(target, ProjectFileNames)
		if err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if path != "" {
			return path, nil
		}
	}

	return GetPath(), nil
}
