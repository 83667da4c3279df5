package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/schedule"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// MenuOptions configures the main menu window.
type MenuOptions struct {
	App         *gtk.Application
	Placement   Placement
	Monitor     *gdk.Monitor
	Loop        schedule.Loop
	Arbiter     *submenu.Arbiter
	Overlay     *Overlay
	Tracker     *PointerTracker
	Recent      func() []recent.Record
	Opener      submenu.URIOpener
	Executor    menu.Executor
	Submenu     submenu.Config
	ColorScheme string
	Logger      *slog.Logger
}

// MenuWindow is the drop-down menu opened from the panel logo.
// Rows and submenu controllers are rebuilt every time it is shown.
type MenuWindow struct {
	opts   MenuOptions
	logger *slog.Logger

	surface  *Surface
	backdrop *Surface
	box      *gtk.Box

	rows        []*Row
	controllers []*submenu.Controller
	handlers    handlers
	visible     bool
}

var _ submenu.ParentMenu = (*MenuWindow)(nil)

// NewMenuWindow creates the menu surface. It is hidden until Show.
func NewMenuWindow(opts MenuOptions) *MenuWindow {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Loop == nil {
		opts.Loop = Loop{}
	}
	if opts.Arbiter == nil {
		opts.Arbiter = submenu.NewArbiter(logger)
	}
	if opts.Overlay == nil {
		opts.Overlay = NewOverlay(logger)
	}
	if opts.Tracker == nil {
		opts.Tracker = NewPointerTracker(0)
	}

	m := &MenuWindow{opts: opts, logger: logger}

	m.surface = newSurface(opts.App, "kiwimenu-menu", layershell.LayerShellLayerOverlay, opts.Placement, opts.Monitor)
	layershell.SetKeyboardMode(m.surface.window, layershell.LayerShellKeyboardModeOnDemand)

	m.box = gtk.NewBox(gtk.OrientationVertical, 0)
	m.box.AddCSSClass("kiwimenu-menu")
	m.box.AddCSSClass(colorSchemeClass(opts.ColorScheme))
	m.surface.window.SetChild(m.box)

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		if keyval == gdk.KEY_Escape {
			m.Close()
			return true
		}
		return false
	})
	m.surface.window.AddController(keys)
	m.surface.window.ConnectCloseRequest(func() bool {
		m.Close()
		return true
	})

	m.backdrop = newBackdrop(opts, m.Close)
	m.opts.Tracker.Track(m.surface)
	m.opts.Tracker.Track(m.backdrop)

	return m
}

// newBackdrop creates a transparent surface under the menu that closes it on
// any click outside. Its exclusive zone of zero keeps the panel clickable and
// places its origin just past the panel, which is where it sits in panel space.
// The pointer tracker follows it too, so the pointer stays known between surfaces.
func newBackdrop(opts MenuOptions, onClick func()) *Surface {
	w := gtk.NewWindow()
	w.SetApplication(opts.App)
	w.SetDecorated(false)
	w.AddCSSClass("kiwimenu-backdrop")

	layershell.InitForWindow(w)
	layershell.SetLayer(w, layershell.LayerShellLayerTop)
	layershell.SetNamespace(w, "kiwimenu-backdrop")
	layershell.SetExclusiveZone(w, 0)
	layershell.SetKeyboardMode(w, layershell.LayerShellKeyboardModeNone)
	for _, edge := range []layershell.LayerShellEdge{
		layershell.LayerShellEdgeTop,
		layershell.LayerShellEdgeBottom,
		layershell.LayerShellEdgeLeft,
		layershell.LayerShellEdgeRight,
	} {
		layershell.SetAnchor(w, edge, true)
	}
	setMonitor(w, opts.Monitor)

	click := gtk.NewGestureClick()
	click.SetButton(0)
	click.ConnectPressed(func(nPress int, x, y float64) { onClick() })
	w.AddController(click)

	return &Surface{window: w, place: opts.Placement, y: opts.Placement.Height}
}

// Show rebuilds the menu from nodes and opens it at panel x coordinate x.
func (m *MenuWindow) Show(nodes []menu.Node, x int) {
	m.rebuild(nodes)

	originX, originY := m.opts.Placement.MenuOrigin()
	m.surface.Move(originX+x, originY)

	m.backdrop.Present()
	m.surface.Present()
	m.visible = true
	m.logger.Debug("menu opened", "rows", len(m.rows), "submenus", len(m.controllers))
}

// Visible reports whether the menu is open.
func (m *MenuWindow) Visible() bool {
	return m.visible
}

// Close implements submenu.ParentMenu. Closing a closed menu is a no-op.
func (m *MenuWindow) Close() {
	if !m.visible {
		return
	}
	m.visible = false
	m.handlers.emit(sigClosed)
	m.surface.Hide()
	m.backdrop.Hide()
	m.logger.Debug("menu closed")
}

// OnClosed implements submenu.ParentMenu.
func (m *MenuWindow) OnClosed(fn func()) submenu.Handle {
	return m.handlers.connect(sigClosed, fn)
}

// Disconnect implements submenu.ParentMenu.
func (m *MenuWindow) Disconnect(h submenu.Handle) {
	m.handlers.disconnect(h)
}

// Items implements submenu.ParentMenu.
func (m *MenuWindow) Items() []submenu.Widget {
	items := make([]submenu.Widget, 0, len(m.rows))
	for _, r := range m.rows {
		items = append(items, r)
	}
	return items
}

// Refresh repopulates any open popout.
func (m *MenuWindow) Refresh() {
	for _, c := range m.controllers {
		c.Refresh()
	}
}

// SetSubmenuConfig applies new tuning to current and future submenus.
func (m *MenuWindow) SetSubmenuConfig(cfg submenu.Config) {
	m.opts.Submenu = cfg
	for _, c := range m.controllers {
		c.SetConfig(cfg)
	}
}

// Destroy tears down every submenu and the menu surfaces.
func (m *MenuWindow) Destroy() {
	m.Close()
	m.clear()
	m.opts.Tracker.Forget(m.surface)
	m.opts.Tracker.Forget(m.backdrop)
	m.surface.Destroy()
	m.backdrop.Destroy()
}

func (m *MenuWindow) rebuild(nodes []menu.Node) {
	m.clear()

	for _, node := range nodes {
		switch node.Kind {
		case menu.KindSeparator:
			sep := gtk.NewSeparator(gtk.OrientationHorizontal)
			sep.AddCSSClass("kiwimenu-separator")
			m.box.Append(sep)

		case menu.KindRecentItems:
			row := newTriggerRow(m.surface, node.Label, m.opts.Submenu.Tolerance.Side)
			m.addRow(row)

			ctrl, err := submenu.NewController(submenu.Host{
				Loop:     m.opts.Loop,
				Trigger:  row,
				Parent:   m,
				Overlay:  m.opts.Overlay,
				Arbiter:  m.opts.Arbiter,
				Pointer:  m.opts.Tracker,
				NewPopup: m.newPopout,
				Recent:   m.opts.Recent,
				Opener:   m.opts.Opener,
			}, m.opts.Submenu, m.logger)
			if err != nil {
				m.logger.Warn("failed to attach submenu", "label", node.Label, "error", err)
				continue
			}
			m.controllers = append(m.controllers, ctrl)

		default:
			row := newRow(m.surface, node.Label)
			if node.Logout {
				row.button.AddCSSClass("kiwimenu-logout")
			}
			row.OnActivate(func() {
				m.Close()
				menu.Activate(node, m.opts.Executor, m.logger)
			})
			m.addRow(row)
		}
	}
}

func (m *MenuWindow) addRow(r *Row) {
	m.rows = append(m.rows, r)
	m.box.Append(r.button)
}

// clear destroys controllers before their rows so no session outlives its trigger.
func (m *MenuWindow) clear() {
	for _, c := range m.controllers {
		c.Destroy()
	}
	m.controllers = nil

	for _, r := range m.rows {
		r.destroy()
	}
	m.rows = nil

	for child := m.box.FirstChild(); child != nil; child = m.box.FirstChild() {
		m.box.Remove(child)
	}
}

func (m *MenuWindow) newPopout(trigger submenu.Trigger) (submenu.Popup, error) {
	r, ok := trigger.Geometry()
	if !ok {
		return nil, &HostError{Message: "trigger is not mapped"}
	}
	return NewPopout(PopoutOptions{
		App:         m.opts.App,
		Placement:   m.opts.Placement,
		Monitor:     m.opts.Monitor,
		Side:        m.opts.Submenu.Tolerance.Side,
		Tracker:     m.opts.Tracker,
		ColorScheme: m.opts.ColorScheme,
		Logger:      m.logger,
	}, r)
}
