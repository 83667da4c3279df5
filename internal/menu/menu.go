// Package menu turns a layout into the ordered list of nodes shown in the
// panel menu. The result is rebuilt every time the menu opens so that the
// display name and the Recent Items popout reflect current state.
package menu

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jmylchreest/kiwimenu/internal/layout"
)

// Kind identifies a node type.
type Kind int

const (
	KindAction Kind = iota
	KindSeparator
	KindRecentItems
)

func (k Kind) String() string {
	switch k {
	case KindSeparator:
		return "separator"
	case KindRecentItems:
		return "recent-items"
	default:
		return "action"
	}
}

// LogoutFlag marks the command list of a logout entry.
const LogoutFlag = "--logout"

// ForceQuitCommand is the single-command entry that opens the force quit picker.
const ForceQuitCommand = "xkill"

// AppStoreToken is replaced by the configured app store command.
const AppStoreToken = "kiwimenu-app-store"

// Node is a rendered menu row.
type Node struct {
	Kind      Kind     `json:"kind" yaml:"kind"`
	Label     string   `json:"label,omitempty" yaml:"label,omitempty"`
	Cmds      []string `json:"cmds,omitempty" yaml:"cmds,omitempty"`
	ForceQuit bool     `json:"force_quit,omitempty" yaml:"force_quit,omitempty"`
	Logout    bool     `json:"logout,omitempty" yaml:"logout,omitempty"`
}

// Context carries the state a render depends on.
type Context struct {
	// DisplayName is the current user's name, appended to the logout label.
	DisplayName string
	// Gettext translates a message id. Nil means identity.
	Gettext func(string) string
	// Enabled reports whether a flag-gated entry is shown. Nil shows everything.
	Enabled func(flag string) bool
	// AppStoreCommand replaces AppStoreToken entries. Empty hides them.
	AppStoreCommand []string
}

func (c Context) translate(s string) string {
	if c.Gettext == nil || s == "" {
		return s
	}
	return c.Gettext(s)
}

func (c Context) enabled(flag string) bool {
	if flag == "" || c.Enabled == nil {
		return true
	}
	return c.Enabled(flag)
}

// Render maps layout entries to nodes, preserving order. It does not modify entries.
func Render(entries []layout.Entry, ctx Context) []Node {
	nodes := make([]Node, 0, len(entries))

	for _, e := range entries {
		if !ctx.enabled(e.Flag) {
			continue
		}

		switch e.Type {
		case layout.TypeMenu:
			node, ok := renderAction(e, ctx)
			if ok {
				nodes = append(nodes, node)
			}
		case layout.TypeRecentItems:
			nodes = append(nodes, Node{Kind: KindRecentItems, Label: ctx.translate(e.Title)})
		case layout.TypeSeparator:
			nodes = append(nodes, Node{Kind: KindSeparator})
		}
	}

	return nodes
}

func renderAction(e layout.Entry, ctx Context) (Node, bool) {
	node := Node{
		Kind:  KindAction,
		Label: ctx.translate(e.Title),
		Cmds:  slices.Clone(e.Cmds),
	}

	switch {
	case IsLogout(e.Cmds):
		node.Logout = true
		if ctx.DisplayName != "" {
			node.Label = fmt.Sprintf(ctx.translate("Log Out %s..."), ctx.DisplayName)
		}
	case len(e.Cmds) == 1 && e.Cmds[0] == ForceQuitCommand:
		node.ForceQuit = true
	case len(e.Cmds) == 1 && e.Cmds[0] == AppStoreToken:
		if len(ctx.AppStoreCommand) == 0 {
			return Node{}, false
		}
		node.Cmds = slices.Clone(ctx.AppStoreCommand)
	}

	return node, true
}

// IsLogout reports whether a command list is a logout command.
func IsLogout(cmds []string) bool {
	return slices.Contains(cmds, LogoutFlag)
}

// Executor runs menu actions.
type Executor interface {
	Spawn(cmds []string) error
	ForceQuit() error
}

// Activate runs the action behind node. Failures are logged, not returned:
// the user-visible effect of a failed launch is that nothing happens.
func Activate(node Node, ex Executor, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if node.Kind != KindAction {
		return
	}

	var err error
	if node.ForceQuit {
		err = ex.ForceQuit()
	} else {
		err = ex.Spawn(node.Cmds)
	}
	if err != nil {
		logger.Warn("menu action failed", "label", node.Label, "cmds", strings.Join(node.Cmds, " "), "error", err)
	}
}
