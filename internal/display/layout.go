package display

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/config"
)

// Placement describes the panel edge and the surfaces stacked against it.
type Placement struct {
	Bottom  bool
	Height  int
	OffsetX int
	OffsetY int
	Monitor int // 0 = compositor default, 1+ = specific monitor
}

// PlacementFromConfig builds a placement from the [panel] section.
func PlacementFromConfig(cfg config.PanelConfig) Placement {
	return Placement{
		Bottom:  config.Position(cfg.Position) == config.PositionBottom,
		Height:  cfg.Height,
		OffsetX: cfg.OffsetX,
		OffsetY: cfg.OffsetY,
		Monitor: cfg.Monitor,
	}
}

func (p Placement) edge() layershell.LayerShellEdge {
	if p.Bottom {
		return layershell.LayerShellEdgeBottom
	}
	return layershell.LayerShellEdgeTop
}

func (p Placement) oppositeEdge() layershell.LayerShellEdge {
	if p.Bottom {
		return layershell.LayerShellEdgeTop
	}
	return layershell.LayerShellEdgeBottom
}

// MenuOrigin returns the panel-space corner the main menu opens at.
func (p Placement) MenuOrigin() (x, y int) {
	return p.OffsetX, p.Height + p.OffsetY
}

// MonitorFor returns the monitor configured in p, or nil for the compositor default.
// A monitor number that is not connected falls back to the first monitor.
func MonitorFor(p Placement, logger *slog.Logger) *gdk.Monitor {
	display := gdk.DisplayGetDefault()
	if display == nil || p.Monitor == 0 {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil {
		logger.Warn("no monitors list available")
		return nil
	}

	index := uint(p.Monitor - 1)
	if index >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first monitor",
			"configured", p.Monitor,
			"available", monitors.NItems(),
		)
		return getPrimaryMonitor(display)
	}

	return wrapMonitor(monitors.Item(index))
}

// getPrimaryMonitor returns the first monitor. GTK4 has no primary monitor.
func getPrimaryMonitor(display *gdk.Display) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	return wrapMonitor(monitors.Item(0))
}

// wrapMonitor casts a list item to a gdk.Monitor.
// gotk4 does not export its own wrapper for this.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

func setMonitor(window *gtk.Window, monitor *gdk.Monitor) {
	if monitor == nil {
		return
	}
	layershell.SetMonitor(window, monitor)
}
