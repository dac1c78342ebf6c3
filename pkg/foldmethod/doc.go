// Package foldmethod derives closed folds from text content, following the
// semantics of vim's 'foldmethod', 'foldmarker', 'shiftwidth', 'foldlevel',
// and 'foldexpr' options.
//
// Each method first assigns a fold level to every line. Folds are then built
// from the levels: a fold of depth d is a maximal run of lines with level of
// at least d, further split wherever a line explicitly starts or ends a fold
// (a fold marker, or a ">N" / "<N" fold expression result).
//
// Folds deeper than [Options.Level] are closed. The resulting [*Oracle]
// reports the outermost closed fold containing a line, which makes it a
// [github.com/macropower/foldsort/pkg/fold.Oracle].
package foldmethod
