// Package rule selects a fold profile for a file, by using CEL (Common
// Expression Language) expressions.
//
// The expressions have access to the file path and its first line, which is
// enough to match on file type or on a vim modeline.
package rule
