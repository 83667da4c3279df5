// Package tui provides a BubbleTea terminal browser for the rendered menu
// and the recent items list.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Pane selects which list is shown.
type Pane int

const (
	PaneMenu Pane = iota
	PaneRecent
)

func (p Pane) title() string {
	if p == PaneRecent {
		return "Recent Items"
	}
	return "Kiwi Menu"
}

// Options configures the browser.
type Options struct {
	Nodes    func() []menu.Node
	Recent   func() []recent.Record
	Executor menu.Executor
	Opener   submenu.URIOpener

	// Changes receives a value whenever the recent items file changes.
	Changes <-chan struct{}

	// ClipboardCommand overrides clipboard tool detection.
	ClipboardCommand string
	Logger           *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	opts   Options
	logger *slog.Logger

	mode Mode
	pane Pane

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	nodes       []menu.Node
	records     []recent.Record
	searchQuery string
	width       int
	height      int
	ready       bool
	now         func() time.Time

	keys KeyMap

	statusMsg string
	statusErr bool
}

// menuItem wraps a menu node for the list component.
type menuItem struct {
	node menu.Node
}

func (i menuItem) Title() string {
	if i.node.Kind == menu.KindRecentItems {
		return i.node.Label + " ›"
	}
	return i.node.Label
}

func (i menuItem) Description() string {
	switch {
	case i.node.Kind == menu.KindRecentItems:
		return "recent items"
	case i.node.ForceQuit:
		return "force quit"
	default:
		return strings.Join(i.node.Cmds, " ")
	}
}

func (i menuItem) FilterValue() string { return i.node.Label }

// recentItem wraps a recent record for the list component.
type recentItem struct {
	record recent.Record
}

func (i recentItem) Title() string { return i.record.Title }

func (i recentItem) Description() string {
	parts := []string{}
	if age := i.record.Age(); age != "" {
		parts = append(parts, age)
	}
	if i.record.MimeType != "" {
		parts = append(parts, i.record.MimeType)
	}
	parts = append(parts, i.record.URI)
	return strings.Join(parts, " - ")
}

func (i recentItem) FilterValue() string {
	return i.record.Title + " " + i.record.URI + " " + i.record.MimeType
}

// itemDelegate styles logout rows and remote recent items.
type itemDelegate struct {
	list.DefaultDelegate
}

func newItemDelegate() itemDelegate {
	return itemDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item. All items share one layout to avoid glitches.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(list.DefaultItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	titleStyle := d.Styles.NormalTitle
	descStyle := d.Styles.NormalDesc
	if isSelected {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	}

	switch it := item.(type) {
	case menuItem:
		if it.node.Logout {
			titleStyle = titleStyle.Foreground(lipgloss.Color("9"))
		}
	case recentItem:
		if !it.record.IsLocal() {
			descStyle = descStyle.Foreground(lipgloss.Color("8"))
		}
	}

	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()
	title := truncate(di.Title(), itemWidth)
	desc := truncate(di.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := list.New(nil, newItemDelegate(), 0, 0)
	l.Title = PaneMenu.title()
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search or filter (mime~pdf, age<1d)..."
	searchInput.CharLimit = 100

	return Model{
		opts:        opts,
		logger:      opts.Logger,
		mode:        ModeList,
		pane:        PaneMenu,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		now:         time.Now,
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.load,
		m.watchForChanges,
	)
}

type loadMsg struct{}

func (m Model) load() tea.Msg {
	return loadMsg{}
}

type refreshMsg struct{}

// watchForChanges waits for the next recent items change.
func (m Model) watchForChanges() tea.Msg {
	if m.opts.Changes == nil {
		return nil
	}
	if _, ok := <-m.opts.Changes; !ok {
		return nil
	}
	return refreshMsg{}
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case loadMsg:
		m.reload()
		return m, nil

	case refreshMsg:
		m.reload()
		return m, m.watchForChanges

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// reload pulls fresh nodes and records and rebuilds the visible list.
func (m *Model) reload() {
	m.nodes = nil
	if m.opts.Nodes != nil {
		m.nodes = m.opts.Nodes()
	}
	m.records = nil
	if m.opts.Recent != nil {
		m.records = m.opts.Recent()
	}
	m.list.SetItems(m.buildListItems())
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit is ignored while typing so "q" can be searched for.
	if m.mode != ModeSearch || msg.Type == tea.KeyCtrlC {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	}
	if m.mode != ModeSearch && key.Matches(msg, m.keys.Help) {
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}
	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Switch):
		if m.pane == PaneMenu {
			m.setPane(PaneRecent)
		} else {
			m.setPane(PaneMenu)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.pane == PaneRecent {
			m.setPane(PaneMenu)
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.activate()

	case key.Matches(msg, m.keys.Details):
		if item := m.list.SelectedItem(); item != nil {
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if text, ok := copyValue(m.list.SelectedItem()); ok {
			return m, m.copyToClipboard(text)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visible(), "", "  ")
		if err != nil {
			return m, status("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.CopyAllYAML):
		data, err := yaml.Marshal(m.visible())
		if err != nil {
			return m, status("Failed to marshal YAML: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		m.mode = ModeList
		return m.activate()

	case key.Matches(msg, m.keys.Copy):
		if text, ok := copyValue(m.list.SelectedItem()); ok {
			return m, m.copyToClipboard(text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		m.mode = ModeList
		m.searchInput.Blur()
		return m.activate()

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering on each keystroke.
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())
	return m, cmd
}

func (m *Model) setPane(p Pane) {
	m.pane = p
	m.searchQuery = ""
	m.list.Title = p.title()
	m.list.SetItems(m.buildListItems())
	m.list.ResetSelected()
}

// activate runs the selected row: an action is launched, the recent items
// row switches panes and a recent record is opened.
func (m Model) activate() (tea.Model, tea.Cmd) {
	switch it := m.list.SelectedItem().(type) {
	case menuItem:
		if it.node.Kind == menu.KindRecentItems {
			m.setPane(PaneRecent)
			return m, nil
		}
		if m.opts.Executor == nil {
			return m, status("No launcher available", true)
		}
		node, ex, logger := it.node, m.opts.Executor, m.logger
		return m, func() tea.Msg {
			menu.Activate(node, ex, logger)
			return statusMsg{text: "Ran " + node.Label}
		}

	case recentItem:
		if m.opts.Opener == nil {
			return m, status("No opener available", true)
		}
		uri, opener := it.record.URI, m.opts.Opener
		return m, func() tea.Msg {
			if err := opener.OpenURI(uri); err != nil {
				return statusMsg{text: "Open failed: " + err.Error(), isErr: true}
			}
			return statusMsg{text: "Opened " + uri}
		}
	}
	return m, nil
}

// visible returns the values behind the current list items.
func (m Model) visible() any {
	items := m.list.Items()
	if m.pane == PaneRecent {
		out := make([]recent.Record, 0, len(items))
		for _, item := range items {
			if ri, ok := item.(recentItem); ok {
				out = append(out, ri.record)
			}
		}
		return out
	}
	out := make([]menu.Node, 0, len(items))
	for _, item := range items {
		if mi, ok := item.(menuItem); ok {
			out = append(out, mi.node)
		}
	}
	return out
}

func copyValue(item list.Item) (string, bool) {
	switch it := item.(type) {
	case menuItem:
		if len(it.node.Cmds) == 0 {
			return "", false
		}
		return strings.Join(it.node.Cmds, " "), true
	case recentItem:
		return it.record.URI, true
	}
	return "", false
}

// buildListItems creates list items for the current pane and search.
func (m Model) buildListItems() []list.Item {
	if m.pane == PaneRecent {
		return m.buildRecentItems()
	}

	items := make([]list.Item, 0, len(m.nodes))
	for _, n := range m.nodes {
		if n.Kind == menu.KindSeparator {
			continue
		}
		if m.searchQuery != "" && !containsIgnoreCase(n.Label, m.searchQuery) {
			continue
		}
		items = append(items, menuItem{node: n})
	}
	return items
}

func (m Model) buildRecentItems() []list.Item {
	records := m.records

	if m.searchQuery != "" {
		if isFilterExpression(m.searchQuery) {
			// isFilterExpression already proved this parses.
			expr, _ := recent.ParseFilter(m.searchQuery)
			records = recent.Filter(records, expr, m.now())
		} else {
			var filtered []recent.Record
			for _, r := range records {
				if containsIgnoreCase(r.Title, m.searchQuery) ||
					containsIgnoreCase(r.URI, m.searchQuery) ||
					containsIgnoreCase(r.MimeType, m.searchQuery) {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}
	}

	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = recentItem{record: r}
	}
	return items
}

// renderDetail renders the detail view for a list item.
func (m Model) renderDetail(item list.Item) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	switch it := item.(type) {
	case menuItem:
		n := it.node
		b.WriteString(headerStyle.Render(n.Label) + "\n\n")
		b.WriteString(labelStyle.Render("Kind: ") + n.Kind.String() + "\n")
		if len(n.Cmds) > 0 {
			b.WriteString(labelStyle.Render("Command: ") + strings.Join(n.Cmds, " ") + "\n")
		}
		if n.ForceQuit {
			b.WriteString(labelStyle.Render("Force quit: ") + "yes\n")
		}
		if n.Logout {
			b.WriteString(labelStyle.Render("Logout: ") + "yes\n")
		}

	case recentItem:
		r := it.record
		b.WriteString(headerStyle.Render(r.Title) + "\n\n")
		b.WriteString(labelStyle.Render("URI: ") + r.URI + "\n")
		if r.MimeType != "" {
			b.WriteString(labelStyle.Render("Type: ") + r.MimeType + "\n")
		}
		if r.Timestamp != 0 {
			b.WriteString(labelStyle.Render("Modified: ") +
				r.Time().Format(time.RFC1123) + " (" + humanize.RelTime(r.Time(), m.now(), "ago", "from now") + ")\n")
		}
		local := "no"
		if r.IsLocal() {
			local = "yes"
		}
		b.WriteString(labelStyle.Render("Local: ") + local + "\n")
	}
	return b.String()
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.opts.ClipboardCommand
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, command)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, "list")
	}
	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render(m.pane.title())
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, "detail")
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
	if m.pane == PaneRecent && isFilterExpression(m.searchQuery) {
		countStr = fmt.Sprintf("(%d matches, filter)", len(m.list.Items()))
	}

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"

	s += sectionStyle.Render("Navigation") + "\n"
	s += keyStyle.Render("  j/k, ↑/↓") + "     Move up/down\n"
	s += keyStyle.Render("  g/G") + "          Go to top/bottom\n"
	s += keyStyle.Render("  pgup/pgdn") + "    Page up/down\n"
	s += keyStyle.Render("  tab") + "          Switch between menu and recent items\n"
	s += "\n"

	s += sectionStyle.Render("Actions") + "\n"
	s += keyStyle.Render("  enter") + "        Run action or open item\n"
	s += keyStyle.Render("  i") + "            Show details\n"
	s += keyStyle.Render("  c") + "            Copy command or URI\n"
	s += keyStyle.Render("  C") + "            Copy all visible as JSON\n"
	s += keyStyle.Render("  alt+c") + "        Copy all visible as YAML\n"
	s += keyStyle.Render("  /") + "            Search (recent items accept mime~pdf, age<1d)\n"
	s += keyStyle.Render("  r") + "            Refresh\n"
	s += "\n"

	s += sectionStyle.Render("General") + "\n"
	s += keyStyle.Render("  ?") + "            Toggle this help\n"
	s += keyStyle.Render("  esc") + "          Back / Cancel\n"
	s += keyStyle.Render("  q") + "            Quit\n"

	s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")
	return s
}

// isFilterExpression reports whether query is a field filter such as
// "mime~pdf" rather than plain search text.
func isFilterExpression(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	expr, err := recent.ParseFilter(query)
	return err == nil && len(expr.Conditions) > 0
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
// mode determines which keybinds are shown: "list", "detail", "search"
func (m Model) buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "activate", 2},
			{"tab", "switch", 3},
			{"?", "help", 4},
			{"/", "search", 5},
			{"i", "details", 6},
			{"c", "copy", 7},
			{"r", "refresh", 8},
		}
	case "detail":
		binds = []keybind{
			{"q", "quit", 1},
			{"esc", "back", 2},
			{"enter", "activate", 3},
			{"c", "copy", 4},
			{"j/k", "scroll", 5},
		}
	case "search":
		binds = []keybind{
			{"enter", "activate", 1},
			{"esc", "close", 2},
			{"↑/↓", "navigate", 3},
		}
	}

	const separator = "  "
	result := ""
	plainLen := 0
	for _, b := range binds {
		plainItem := b.key + " " + b.desc
		testLen := plainLen + len(plainItem)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += keyStyle.Render(b.key) + " " + b.desc
		plainLen = testLen
	}

	return style.Render(result)
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
