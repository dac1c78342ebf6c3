// Package expr provides CEL (Common Expression Language) environments for
// foldsort.
//
// Two variable sets are available:
//   - [FoldVariables], for fold expressions evaluated once per line:
//     `line`, `lnum`, `lines`, `prevLine`, `nextLine`, `shiftwidth`.
//   - [RuleVariables], for config rules evaluated once per input:
//     `path`, `firstLine`.
//
// Both include the string, math, and list extensions, plus the functions
// `pathBase`, `pathDir`, `pathExt`, `indent`, and `isBlank`.
package expr
