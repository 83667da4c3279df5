package display

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// Row is an interactive menu row.
type Row struct {
	surface  *Surface
	button   *gtk.Button
	box      *gtk.Box
	handlers handlers
	gone     bool
}

var _ submenu.Trigger = (*Row)(nil)

func newRow(surface *Surface, label string) *Row {
	r := &Row{surface: surface}

	text := gtk.NewLabel(label)
	text.SetXAlign(0)
	text.SetHExpand(true)

	r.box = gtk.NewBox(gtk.OrientationHorizontal, 8)
	r.box.Append(text)

	r.button = gtk.NewButton()
	r.button.SetChild(r.box)
	r.button.SetHasFrame(false)
	r.button.AddCSSClass("kiwimenu-item")

	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) { r.handlers.emit(sigEnter) })
	motion.ConnectLeave(func() { r.handlers.emit(sigLeave) })
	r.button.AddController(motion)

	r.button.ConnectClicked(func() { r.handlers.emit(sigActivate) })
	r.button.ConnectDestroy(r.destroy)

	return r
}

// newTriggerRow creates a row that opens a popout, with a disclosure arrow.
func newTriggerRow(surface *Surface, label string, side geometry.Side) *Row {
	r := newRow(surface, label)
	r.button.AddCSSClass("kiwimenu-submenu")

	icon := "go-next-symbolic"
	if side == geometry.SideLeft {
		icon = "go-previous-symbolic"
	}
	arrow := gtk.NewImageFromIconName(icon)
	arrow.AddCSSClass("kiwimenu-arrow")
	r.box.Append(arrow)
	return r
}

// Widget returns the row's toolkit widget.
func (r *Row) Widget() gtk.Widgetter { return r.button }

// Geometry implements submenu.Widget.
func (r *Row) Geometry() (geometry.Rect, bool) {
	if r.gone {
		return geometry.Rect{}, false
	}
	return r.surface.WidgetRect(r.button)
}

func (r *Row) OnHoverEnter(fn func()) submenu.Handle { return r.handlers.connect(sigEnter, fn) }

func (r *Row) OnHoverLeave(fn func()) submenu.Handle { return r.handlers.connect(sigLeave, fn) }

func (r *Row) OnDestroy(fn func()) submenu.Handle { return r.handlers.connect(sigDestroy, fn) }

func (r *Row) OnActivate(fn func()) submenu.Handle { return r.handlers.connect(sigActivate, fn) }

func (r *Row) Disconnect(h submenu.Handle) { r.handlers.disconnect(h) }

// destroy notifies destroy handlers once and drops every handler.
func (r *Row) destroy() {
	if r.gone {
		return
	}
	r.gone = true
	r.handlers.emit(sigDestroy)
	r.handlers.clear()
}
