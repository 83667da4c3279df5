package submenu

import (
	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// Handle identifies a connected event handler. Zero means "not connected".
type Handle uint64

// Widget is the part of a toolkit widget the controller needs.
type Widget interface {
	// Geometry returns the widget's current on-screen rectangle.
	// ok is false when the widget is not mapped.
	Geometry() (r geometry.Rect, ok bool)
	OnHoverEnter(fn func()) Handle
	OnHoverLeave(fn func()) Handle
	OnDestroy(fn func()) Handle
	// Disconnect removes a handler. Unknown handles are ignored.
	Disconnect(h Handle)
}

// Trigger is the always-visible menu row that opens the popout.
type Trigger interface {
	Widget
	// OnActivate fires on press or keyboard activation.
	OnActivate(fn func()) Handle
}

// Popup is the popout surface.
type Popup interface {
	Widget
	// SetItems replaces the popout's rows.
	SetItems(records []recent.Record)
	OnItemActivated(fn func(recent.Record)) Handle
	// OnOpenStateChanged fires when the host opens or dismisses the surface.
	OnOpenStateChanged(fn func(open bool)) Handle
	Open()
	// Destroy releases the surface. The popup is not used afterwards.
	Destroy()
}

// PopupFactory creates a fresh popup for trigger.
type PopupFactory func(trigger Trigger) (Popup, error)

// ParentMenu is the menu hosting the trigger.
type ParentMenu interface {
	// OnClosed fires when the menu closes.
	OnClosed(fn func()) Handle
	Disconnect(h Handle)
	// Items returns the interactive rows of the menu, the trigger included.
	Items() []Widget
	// Close closes the menu.
	Close()
}

// Overlay is the host's top-level layer popouts are shown on.
type Overlay interface {
	Add(p Popup)
	Remove(p Popup)
}

// PointerSource reports the pointer position in the same coordinate space as
// Widget.Geometry. ok is false when the position is unknown.
type PointerSource interface {
	Pointer() (p geometry.Point, ok bool)
}

// URIOpener launches the default handler for a URI.
type URIOpener interface {
	OpenURI(uri string) error
}
