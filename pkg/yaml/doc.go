// Package yaml wraps [github.com/goccy/go-yaml] with foldsort's encoder
// settings, JSON schema validation, and errors that point at the offending
// YAML path.
package yaml
