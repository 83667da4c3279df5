package display

import (
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
)

// Surface is a layer-shell window positioned in panel space by its margins.
// For a bottom panel the y axis runs upwards from the bottom edge, which keeps
// vertical overlap between surfaces intact without knowing the monitor height.
type Surface struct {
	window *gtk.Window
	place  Placement
	x, y   int
}

func newSurface(app *gtk.Application, namespace string, layer layershell.LayerShellLayer, place Placement, monitor *gdk.Monitor) *Surface {
	w := gtk.NewWindow()
	w.SetApplication(app)
	w.SetDecorated(false)
	w.SetResizable(false)

	layershell.InitForWindow(w)
	layershell.SetLayer(w, layer)
	layershell.SetNamespace(w, namespace)
	// Ignore the panel's exclusive zone so margins are measured from the edge.
	layershell.SetExclusiveZone(w, -1)
	layershell.SetAnchor(w, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(w, place.edge(), true)
	setMonitor(w, monitor)

	return &Surface{window: w, place: place}
}

// Move places the surface's anchored corner at (x, y) in panel space.
func (s *Surface) Move(x, y int) {
	s.x, s.y = max(x, 0), max(y, 0)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, s.x)
	layershell.SetMargin(s.window, s.place.edge(), s.y)
}

// ToPanel converts window-local coordinates to panel space.
func (s *Surface) ToPanel(wx, wy float64) geometry.Point {
	p := geometry.Point{X: float64(s.x) + wx}
	if s.place.Bottom {
		p.Y = float64(s.y) + float64(s.window.Height()) - wy
	} else {
		p.Y = float64(s.y) + wy
	}
	return p
}

// WidgetRect returns w's bounds in panel space. ok is false when w is not mapped.
func (s *Surface) WidgetRect(w gtk.Widgetter) (geometry.Rect, bool) {
	base := gtk.BaseWidget(w)
	if !base.Mapped() {
		return geometry.Rect{}, false
	}
	b, ok := base.ComputeBounds(s.window)
	if !ok || b == nil {
		return geometry.Rect{}, false
	}

	x, y := float64(b.X()), float64(b.Y())
	a := s.ToPanel(x, y)
	c := s.ToPanel(x+float64(b.Width()), y+float64(b.Height()))
	return geometry.Rect{
		X1: a.X,
		Y1: min(a.Y, c.Y),
		X2: c.X,
		Y2: max(a.Y, c.Y),
	}, true
}

// Rect returns the whole surface in panel space.
func (s *Surface) Rect() (geometry.Rect, bool) {
	return s.WidgetRect(s.window)
}

func (s *Surface) Present() { s.window.Present() }

func (s *Surface) Hide() { s.window.SetVisible(false) }

func (s *Surface) Visible() bool { return s.window.IsVisible() }

func (s *Surface) Destroy() { s.window.Destroy() }
