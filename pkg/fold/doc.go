// Package fold sorts closed text folds by the content of a key line.
//
// A [Range] of lines is partitioned into [Segment]s, one per closed fold (or
// one per bare line where no fold is closed), using an [Oracle] supplied by
// the host. Segments are then stably sorted by their key line and written
// back to the [Document] in a single replacement. Lines inside a segment are
// never reordered or altered.
//
// The package has no knowledge of how folds are defined. Hosts provide that:
//   - [github.com/macropower/foldsort/pkg/foldmethod] derives folds from text
//     content using vim-like fold methods.
//   - [github.com/macropower/foldsort/pkg/nvim] asks a running Neovim.
package fold
