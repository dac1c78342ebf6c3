// Package v1beta1 contains the v1beta1 API types for foldsort configuration.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all foldsort configuration kinds.
const APIVersion = "foldsort.jacobcolvin.com/v1beta1"

var (
	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}

	ErrUnknownAPIVersion = errors.New("unknown apiVersion")
	ErrUnknownKind       = errors.New("unknown kind")
)

// TypeMeta contains the API version and kind metadata common to all config types.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version,required"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind,required"`
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check returns an error if the API version or kind is not one of the given
// values.
func (tm TypeMeta) Check(apiVersions, kinds []string) error {
	if !slices.Contains(apiVersions, tm.APIVersion) {
		return fmt.Errorf("%w %q, want one of %q", ErrUnknownAPIVersion, tm.APIVersion, apiVersions)
	}

	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w %q, want one of %q", ErrUnknownKind, tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all config types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// JSON schema to the given values.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	restrict := func(name string, values []string) {
		prop, ok := jss.Properties.Get(name)
		if !ok {
			panic(fmt.Sprintf("%s property not found in schema", name))
		}

		for _, v := range values {
			prop.Enum = append(prop.Enum, v)
		}

		_, _ = jss.Properties.Set(name, prop)
	}

	restrict("apiVersion", apiVersions)
	restrict("kind", kinds)
}
