package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kiwimenu/internal/menu"
)

var runOpts struct {
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run LABEL",
	Short: "Run a menu action by its label",
	Long: `Run the menu action whose label matches LABEL, as if it had been
clicked in the panel menu.

Matching ignores case and a trailing ellipsis, so "about this computer"
matches "About This Computer". The logout entry matches "log out" even
though its rendered label carries the user's name.`,
	Args: cobra.ExactArgs(1),
	RunE: runAction,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runOpts.dryRun, "dry-run", "n", false,
		"Print the command instead of running it")
}

func normalizeLabel(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "...")
	s = strings.TrimSuffix(s, "…")
	return strings.TrimSpace(s)
}

// findAction returns the action node matching label.
func findAction(nodes []menu.Node, label string) (menu.Node, bool) {
	want := normalizeLabel(label)
	for _, n := range nodes {
		if n.Kind != menu.KindAction {
			continue
		}
		got := normalizeLabel(n.Label)
		if got == want || (n.Logout && strings.HasPrefix(got, want) && want != "") {
			return n, true
		}
	}
	return menu.Node{}, false
}

func runAction(cmd *cobra.Command, args []string) error {
	l := newLauncher()
	node, ok := findAction(renderMenu(l), args[0])
	if !ok {
		return fmt.Errorf("no menu action named %q", args[0])
	}

	if runOpts.dryRun {
		line := strings.Join(node.Cmds, " ")
		if node.ForceQuit {
			line = menu.ForceQuitCommand
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
		return err
	}

	menu.Activate(node, l, logger)
	return nil
}
