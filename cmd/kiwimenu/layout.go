package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/kiwimenu/internal/launcher"
	"github.com/jmylchreest/kiwimenu/internal/layout"
	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/settings"
)

var layoutOpts struct {
	format string
	raw    bool
	icons  bool
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show the menu layout",
	Long: `Show the menu as the panel would render it right now.

The layout is read from ~/.config/kiwimenu/menulayout.json, falling back
to the built-in default. Flag-gated entries are hidden according to the
[settings] table, and the logout entry carries the current user's name.

Use --raw to print the layout entries before rendering, or --icons to
list the selectable panel icons.`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringVarP(&layoutOpts.format, "format", "f", "tree",
		"Output format (tree, json, yaml)")
	layoutCmd.Flags().BoolVar(&layoutOpts.raw, "raw", false,
		"Print layout entries instead of the rendered menu")
	layoutCmd.Flags().BoolVar(&layoutOpts.icons, "icons", false,
		"Print the panel icon descriptors")
}

// renderMenu renders the configured layout the way the panel does on open.
func renderMenu(l *launcher.Launcher) []menu.Node {
	c := getConfig()
	store := settings.New(c.Settings, logger)

	ctx, cancel := context.WithTimeout(context.Background(), c.Session.QueryTimeout.Duration())
	defer cancel()

	return menu.Render(layout.Entries(c.LayoutPath(), logger), menu.Context{
		DisplayName:     l.DisplayName(ctx),
		Enabled:         store.GetBoolean,
		AppStoreCommand: strings.Fields(store.GetString(settings.KeyAppStoreCommand)),
	})
}

func newLauncher() *launcher.Launcher {
	return launcher.New(logger, launcher.WithTimeout(getConfig().Session.QueryTimeout.Duration()))
}

func runLayout(cmd *cobra.Command, args []string) error {
	c := getConfig()
	w := cmd.OutOrStdout()

	var value any
	switch {
	case layoutOpts.icons:
		icons := layout.Icons(c.IconsPath(), logger)
		if layoutOpts.format == "tree" {
			return writeIcons(w, icons, c.IconDir())
		}
		value = icons
	case layoutOpts.raw:
		entries := layout.Entries(c.LayoutPath(), logger)
		if layoutOpts.format == "tree" {
			return writeEntries(w, entries)
		}
		value = entries
	default:
		nodes := renderMenu(newLauncher())
		if layoutOpts.format == "tree" {
			return writeNodes(w, nodes)
		}
		value = nodes
	}

	return writeValue(w, layoutOpts.format, value)
}

// writeValue encodes value as json or yaml.
func writeValue(w io.Writer, format string, value any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format %q (use tree, json or yaml)", format)
	}
}

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logoutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	submenuStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func writeNodes(w io.Writer, nodes []menu.Node) error {
	var sb strings.Builder
	for _, n := range nodes {
		switch {
		case n.Kind == menu.KindSeparator:
			sb.WriteString(dimStyle.Render("────────────") + "\n")
		case n.Kind == menu.KindRecentItems:
			sb.WriteString(submenuStyle.Render(n.Label+" ›") + "\n")
		case n.Logout:
			sb.WriteString(logoutStyle.Render(n.Label) + "  " + dimStyle.Render(strings.Join(n.Cmds, " ")) + "\n")
		case n.ForceQuit:
			sb.WriteString(labelStyle.Render(n.Label) + "  " + dimStyle.Render("(force quit)") + "\n")
		default:
			sb.WriteString(labelStyle.Render(n.Label) + "  " + dimStyle.Render(strings.Join(n.Cmds, " ")) + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeEntries(w io.Writer, entries []layout.Entry) error {
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%2d  %-12s %s", i+1, e.Type, e.Title)
		if len(e.Cmds) > 0 {
			sb.WriteString("  " + dimStyle.Render(strings.Join(e.Cmds, " ")))
		}
		if e.Flag != "" {
			sb.WriteString("  " + dimStyle.Render("["+e.Flag+"]"))
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeIcons(w io.Writer, icons []layout.Icon, iconDir string) error {
	var sb strings.Builder
	for i, icon := range icons {
		kind := "name"
		if icon.IsFile() {
			kind = "file"
		}
		fmt.Fprintf(&sb, "%2d  %-24s %s  %s\n", i, icon.Title, icon.Resolve(iconDir), dimStyle.Render("("+kind+")"))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
