package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/menu"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("0, 100,200,130.5")
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X1: 0, Y1: 100, X2: 200, Y2: 130.5}, r)

	_, err = parseRect("1,2,3")
	assert.Error(t, err)
	_, err = parseRect("1,2,3,x")
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("10", "20.5")
	require.NoError(t, err)
	assert.Equal(t, geometry.Point{X: 10, Y: 20.5}, p)

	_, err = parsePoint("ten", "20")
	assert.Error(t, err)
}

func TestFindAction(t *testing.T) {
	nodes := []menu.Node{
		{Kind: menu.KindAction, Label: "About This Computer", Cmds: []string{"about"}},
		{Kind: menu.KindSeparator},
		{Kind: menu.KindRecentItems, Label: "Recent Items"},
		{Kind: menu.KindAction, Label: "Force Quit...", Cmds: []string{"xkill"}, ForceQuit: true},
		{Kind: menu.KindAction, Label: "Log Out Ada...", Cmds: []string{"gnome-session-quit", "--logout"}, Logout: true},
	}

	n, ok := findAction(nodes, "about this computer")
	require.True(t, ok)
	assert.Equal(t, []string{"about"}, n.Cmds)

	n, ok = findAction(nodes, "Force Quit")
	require.True(t, ok)
	assert.True(t, n.ForceQuit)

	n, ok = findAction(nodes, "log out")
	require.True(t, ok)
	assert.True(t, n.Logout)

	_, ok = findAction(nodes, "Recent Items")
	assert.False(t, ok, "submenu rows are not actions")

	_, ok = findAction(nodes, "")
	assert.False(t, ok)
}

func TestFilterExpression(t *testing.T) {
	assert.Equal(t, "", filterExpression("", ""))
	assert.Equal(t, "mime~pdf", filterExpression("mime~pdf", ""))
	assert.Equal(t, "age<=1d", filterExpression("", "1d"))
	assert.Equal(t, "mime~pdf,age<=1d", filterExpression("mime~pdf", "1d"))
	assert.Equal(t, "mime~pdf", filterExpression("mime~pdf", "0"))
}

func TestReadSelector(t *testing.T) {
	s, err := readSelector(strings.NewReader("\n  \n2 | 5m | report.pdf\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "2 | 5m | report.pdf", s)

	_, err = readSelector(strings.NewReader("\n\n"))
	assert.Error(t, err)
}

func TestWriteValue(t *testing.T) {
	v := map[string]int{"a": 1}

	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, "json", v))
	assert.JSONEq(t, `{"a":1}`, buf.String())

	buf.Reset()
	require.NoError(t, writeValue(&buf, "yaml", v))
	assert.Equal(t, "a: 1\n", buf.String())

	assert.Error(t, writeValue(&buf, "xml", v))
}

func TestWriteNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeNodes(&buf, []menu.Node{
		{Kind: menu.KindAction, Label: "System Settings", Cmds: []string{"gnome-control-center"}},
		{Kind: menu.KindSeparator},
		{Kind: menu.KindRecentItems, Label: "Recent Items"},
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "System Settings")
	assert.Contains(t, lines[0], "gnome-control-center")
	assert.Contains(t, lines[2], "Recent Items")
}
