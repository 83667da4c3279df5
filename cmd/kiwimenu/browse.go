package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/tui"
)

var browseOpts struct {
	clipboard string
	noWatch   bool
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the menu and recent items interactively",
	Long: `Launch an interactive terminal view of the menu and recent items.

The view reloads when the recent items file changes. Enter runs a menu
action or opens a recent item; press ? for all key bindings.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringVar(&browseOpts.clipboard, "clipboard", "",
		"Clipboard command (default: auto-detect wl-copy, xclip, xsel)")
	browseCmd.Flags().BoolVar(&browseOpts.noWatch, "no-watch", false,
		"Do not reload when the recent items file changes")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	l := newLauncher()

	var changes chan struct{}
	if !browseOpts.noWatch {
		w, err := recent.NewWatcher(getConfig().RecentPath(), logger)
		if err != nil {
			logger.Warn("recent items will not refresh", "error", err)
		} else {
			changes = make(chan struct{}, 1)
			w.SetChangeCallback(func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err := w.Start(); err != nil {
				logger.Warn("recent items will not refresh", "error", err)
			}
			defer func() { _ = w.Stop() }()
		}
	}

	opts := tui.Options{
		Nodes:            func() []menu.Node { return renderMenu(l) },
		Recent:           loadRecent,
		Executor:         l,
		Opener:           l,
		ClipboardCommand: browseOpts.clipboard,
		Logger:           logger,
	}
	if changes != nil {
		opts.Changes = changes
	}
	return tui.Run(opts)
}
