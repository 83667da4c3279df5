package display

import (
	"log/slog"

	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// Overlay is the layer popouts are shown on. It keeps the set of live popouts
// so they can be dismissed together when the panel goes away.
type Overlay struct {
	logger *slog.Logger
	live   map[submenu.Popup]bool
}

var _ submenu.Overlay = (*Overlay)(nil)

// NewOverlay creates an empty overlay.
func NewOverlay(logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Overlay{logger: logger, live: make(map[submenu.Popup]bool)}
}

// Add implements submenu.Overlay.
func (o *Overlay) Add(p submenu.Popup) {
	if po, ok := p.(*Popout); ok {
		po.surface.window.AddCSSClass("kiwimenu-overlay")
	}
	o.live[p] = true
	o.logger.Debug("popout added to overlay", "live", len(o.live))
}

// Remove implements submenu.Overlay. Removing an unknown popup is a no-op.
func (o *Overlay) Remove(p submenu.Popup) {
	if !o.live[p] {
		return
	}
	delete(o.live, p)
	o.logger.Debug("popout removed from overlay", "live", len(o.live))
}

// Len returns the number of live popouts.
func (o *Overlay) Len() int {
	return len(o.live)
}
