package display

import (
	"log/slog"
	"strings"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// Popout sizing in logical pixels.
const (
	PopoutWidth = 320
	PopoutGap   = 12
)

// Popout is the Recent Items surface. The window carries a transparent strip
// over the gap next to the trigger so the pointer stays visible while it
// crosses the bridge; hover signals come from the visible frame only.
type Popout struct {
	surface *Surface
	tracker *PointerTracker
	logger  *slog.Logger

	frame *gtk.Box
	list  *gtk.Box

	handlers handlers
	open     bool
	gone     bool
}

var _ submenu.Popup = (*Popout)(nil)

// PopoutOptions configures a new popout.
type PopoutOptions struct {
	App         *gtk.Application
	Placement   Placement
	Monitor     *gdk.Monitor
	Side        geometry.Side
	Tracker     *PointerTracker
	ColorScheme string
	Logger      *slog.Logger
}

// NewPopout creates a popout next to the trigger rectangle.
func NewPopout(opts PopoutOptions, trigger geometry.Rect) (*Popout, error) {
	if opts.App == nil {
		return nil, &HostError{Message: "no application for popout"}
	}
	if !trigger.Valid() {
		return nil, &HostError{Message: "trigger is not mapped"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Popout{
		surface: newSurface(opts.App, "kiwimenu-popout", layershell.LayerShellLayerOverlay, opts.Placement, opts.Monitor),
		tracker: opts.Tracker,
		logger:  logger,
	}
	layershell.SetKeyboardMode(p.surface.window, layershell.LayerShellKeyboardModeNone)
	p.surface.window.AddCSSClass("kiwimenu-popout-window")

	p.list = gtk.NewBox(gtk.OrientationVertical, 0)
	p.frame = gtk.NewBox(gtk.OrientationVertical, 0)
	p.frame.AddCSSClass("kiwimenu-popout")
	p.frame.AddCSSClass(colorSchemeClass(opts.ColorScheme))
	p.frame.SetSizeRequest(PopoutWidth, -1)
	p.frame.SetVAlign(gtk.AlignStart)
	if opts.Placement.Bottom {
		p.frame.SetVAlign(gtk.AlignEnd)
	}
	p.frame.Append(p.list)

	bridge := gtk.NewBox(gtk.OrientationHorizontal, 0)
	bridge.AddCSSClass("kiwimenu-bridge")
	bridge.SetSizeRequest(PopoutGap, -1)

	root := gtk.NewBox(gtk.OrientationHorizontal, 0)
	x := int(trigger.X2)
	if opts.Side == geometry.SideLeft {
		root.Append(p.frame)
		root.Append(bridge)
		x = int(trigger.X1) - PopoutGap - PopoutWidth
	} else {
		root.Append(bridge)
		root.Append(p.frame)
	}
	p.surface.window.SetChild(root)
	p.surface.Move(x, int(trigger.Y1))

	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) { p.handlers.emit(sigEnter) })
	motion.ConnectLeave(func() { p.handlers.emit(sigLeave) })
	p.frame.AddController(motion)

	p.surface.window.ConnectCloseRequest(func() bool {
		p.setOpen(false)
		return true
	})

	if p.tracker != nil {
		p.tracker.Track(p.surface)
	}
	return p, nil
}

// Geometry implements submenu.Widget. It reports the visible frame, not the bridge strip.
func (p *Popout) Geometry() (geometry.Rect, bool) {
	if p.gone || !p.open {
		return geometry.Rect{}, false
	}
	return p.surface.WidgetRect(p.frame)
}

func (p *Popout) OnHoverEnter(fn func()) submenu.Handle { return p.handlers.connect(sigEnter, fn) }

func (p *Popout) OnHoverLeave(fn func()) submenu.Handle { return p.handlers.connect(sigLeave, fn) }

func (p *Popout) OnDestroy(fn func()) submenu.Handle { return p.handlers.connect(sigDestroy, fn) }

func (p *Popout) OnItemActivated(fn func(recent.Record)) submenu.Handle {
	return p.handlers.connect(sigItem, fn)
}

func (p *Popout) OnOpenStateChanged(fn func(open bool)) submenu.Handle {
	return p.handlers.connect(sigOpenState, fn)
}

func (p *Popout) Disconnect(h submenu.Handle) { p.handlers.disconnect(h) }

// SetItems implements submenu.Popup.
func (p *Popout) SetItems(records []recent.Record) {
	if p.gone {
		return
	}
	for child := p.list.FirstChild(); child != nil; child = p.list.FirstChild() {
		p.list.Remove(child)
	}

	if len(records) == 0 {
		empty := gtk.NewLabel("No recent items")
		empty.AddCSSClass("kiwimenu-empty")
		empty.SetSensitive(false)
		p.list.Append(empty)
		return
	}

	for _, rec := range records {
		p.list.Append(p.buildItem(rec))
	}
}

func (p *Popout) buildItem(rec recent.Record) gtk.Widgetter {
	icon := gtk.NewImageFromGIcon(gio.NewThemedIconFromNames(iconNames(rec.MimeType)))
	icon.SetPixelSize(16)

	title := gtk.NewLabel(rec.Title)
	title.SetXAlign(0)
	title.SetHExpand(true)
	title.SetEllipsize(pango.EllipsizeMiddle)
	title.SetMaxWidthChars(40)

	box := gtk.NewBox(gtk.OrientationHorizontal, 8)
	box.Append(icon)
	box.Append(title)

	btn := gtk.NewButton()
	btn.SetChild(box)
	btn.SetHasFrame(false)
	btn.AddCSSClass("kiwimenu-item")
	btn.AddCSSClass("kiwimenu-recent")
	if class := sanitizeClassName(rec.MimeType); class != "" {
		btn.AddCSSClass("mime-" + class)
	}

	tooltip := rec.URI
	if age := rec.Age(); age != "" {
		tooltip += "\n" + age
	}
	btn.SetTooltipText(tooltip)

	btn.ConnectClicked(func() {
		p.logger.Debug("recent item activated", "uri", rec.URI)
		p.handlers.emitRecord(rec)
	})
	return btn
}

// Open implements submenu.Popup.
func (p *Popout) Open() {
	if p.gone {
		return
	}
	p.surface.Present()
	p.setOpen(true)
}

func (p *Popout) setOpen(open bool) {
	if p.open == open {
		return
	}
	p.open = open
	if !open {
		p.surface.Hide()
	}
	p.handlers.emitOpen(open)
}

// Destroy implements submenu.Popup. It is safe to call more than once.
func (p *Popout) Destroy() {
	if p.gone {
		return
	}
	p.gone = true
	p.open = false
	p.handlers.emit(sigDestroy)
	p.handlers.clear()
	if p.tracker != nil {
		p.tracker.Forget(p.surface)
	}
	p.surface.Destroy()
}

// iconNames returns themed icon names for a MIME type, most specific first.
func iconNames(mime string) []string {
	if mime == "" {
		return []string{"text-x-generic"}
	}
	if mime == "inode/directory" {
		return []string{"folder"}
	}
	names := []string{strings.ReplaceAll(mime, "/", "-")}
	if major, _, ok := strings.Cut(mime, "/"); ok {
		names = append(names, major+"-x-generic")
	}
	return append(names, "text-x-generic")
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/' || r == '+':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}
