// Package config loads foldsort configuration files.
//
// It decodes YAML, validates it against the JSON schema of the target type,
// and reports errors annotated with the offending source lines.
package config
