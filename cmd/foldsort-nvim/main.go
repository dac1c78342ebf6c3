// Command foldsort-nvim is a Neovim remote plugin providing :SortFolds.
//
// Neovim defines remote plugin commands from a manifest sourced at startup.
// The plugin/foldsort.vim file in this repository registers the "foldsort"
// host and carries the manifest, so adding the repository to 'runtimepath'
// and putting foldsort-nvim on $PATH is enough. Set g:foldsort_cmd to use a
// different binary. After changing the registered commands, regenerate the
// manifest with:
//
//	foldsort-nvim -manifest foldsort -location plugin/foldsort.vim
//
// Standard output carries the RPC channel, so logs are written to standard
// error, which Neovim shows in :messages.
package main

import (
	"log/slog"
	"os"

	"github.com/neovim/go-client/nvim/plugin"

	"github.com/macropower/foldsort/pkg/log"
	"github.com/macropower/foldsort/pkg/nvim"
)

func main() {
	level, err := log.GetLevel(os.Getenv("FOLDSORT_LOG_LEVEL"))
	if err != nil {
		level = slog.LevelWarn
	}

	slog.SetDefault(slog.New(log.CreateHandler(os.Stderr, level, log.FormatLogfmt)))

	plugin.Main(func(p *plugin.Plugin) error {
		return nvim.Register(p)
	})
}
