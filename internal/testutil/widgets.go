package testutil

import (
	"errors"
	"sort"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

type signal int

const (
	sigEnter signal = iota
	sigLeave
	sigDestroy
	sigActivate
	sigItem
	sigOpenState
	sigClosed
)

// signals is a small handler registry keyed by handle.
type signals struct {
	last     submenu.Handle
	handlers map[submenu.Handle]handler
}

type handler struct {
	sig signal
	fn  any
}

func (s *signals) add(sig signal, fn any) submenu.Handle {
	if s.handlers == nil {
		s.handlers = make(map[submenu.Handle]handler)
	}
	s.last++
	s.handlers[s.last] = handler{sig: sig, fn: fn}
	return s.last
}

func (s *signals) remove(h submenu.Handle) {
	delete(s.handlers, h)
}

// of returns handlers for sig in connection order.
func (s *signals) of(sig signal) []any {
	keys := make([]submenu.Handle, 0, len(s.handlers))
	for h, hd := range s.handlers {
		if hd.sig == sig {
			keys = append(keys, h)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]any, 0, len(keys))
	for _, h := range keys {
		out = append(out, s.handlers[h].fn)
	}
	return out
}

func (s *signals) emit(sig signal) {
	for _, fn := range s.of(sig) {
		fn.(func())()
	}
}

func (s *signals) count() int {
	return len(s.handlers)
}

// FakeWidget is an in-memory submenu.Widget.
type FakeWidget struct {
	Name   string
	Rect   geometry.Rect
	Mapped bool
	sigs   signals
}

// NewFakeWidget returns a mapped widget covering r.
func NewFakeWidget(name string, r geometry.Rect) *FakeWidget {
	return &FakeWidget{Name: name, Rect: r, Mapped: true}
}

func (w *FakeWidget) Geometry() (geometry.Rect, bool) {
	return w.Rect, w.Mapped
}

func (w *FakeWidget) OnHoverEnter(fn func()) submenu.Handle { return w.sigs.add(sigEnter, fn) }
func (w *FakeWidget) OnHoverLeave(fn func()) submenu.Handle { return w.sigs.add(sigLeave, fn) }
func (w *FakeWidget) OnDestroy(fn func()) submenu.Handle    { return w.sigs.add(sigDestroy, fn) }
func (w *FakeWidget) Disconnect(h submenu.Handle)           { w.sigs.remove(h) }

// Enter emits hover-enter.
func (w *FakeWidget) Enter() { w.sigs.emit(sigEnter) }

// Leave emits hover-leave.
func (w *FakeWidget) Leave() { w.sigs.emit(sigLeave) }

// Destroy emits destroy.
func (w *FakeWidget) Destroy() { w.sigs.emit(sigDestroy) }

// Connected returns the number of live handlers.
func (w *FakeWidget) Connected() int { return w.sigs.count() }

// FakeTrigger is an in-memory submenu.Trigger.
type FakeTrigger struct {
	FakeWidget
}

// NewFakeTrigger returns a mapped trigger covering r.
func NewFakeTrigger(r geometry.Rect) *FakeTrigger {
	return &FakeTrigger{FakeWidget: FakeWidget{Name: "trigger", Rect: r, Mapped: true}}
}

func (t *FakeTrigger) OnActivate(fn func()) submenu.Handle { return t.sigs.add(sigActivate, fn) }

// Activate emits activate.
func (t *FakeTrigger) Activate() { t.sigs.emit(sigActivate) }

// FakePopup is an in-memory submenu.Popup.
type FakePopup struct {
	FakeWidget
	Items        []recent.Record
	Opened       int
	DestroyCount int
}

func (p *FakePopup) SetItems(records []recent.Record) {
	p.Items = append([]recent.Record(nil), records...)
}

func (p *FakePopup) OnItemActivated(fn func(recent.Record)) submenu.Handle {
	return p.sigs.add(sigItem, fn)
}

func (p *FakePopup) OnOpenStateChanged(fn func(bool)) submenu.Handle {
	return p.sigs.add(sigOpenState, fn)
}

func (p *FakePopup) Open() { p.Opened++ }

// Destroy records the call and emits destroy to any handler still connected.
func (p *FakePopup) Destroy() {
	p.DestroyCount++
	p.sigs.emit(sigDestroy)
}

// ActivateItem emits item-activated for rec.
func (p *FakePopup) ActivateItem(rec recent.Record) {
	for _, fn := range p.sigs.of(sigItem) {
		fn.(func(recent.Record))(rec)
	}
}

// SetOpen emits an open-state change.
func (p *FakePopup) SetOpen(open bool) {
	for _, fn := range p.sigs.of(sigOpenState) {
		fn.(func(bool))(open)
	}
}

// PopupFactory builds FakePopups placed at Rect and keeps every popup it made.
type PopupFactory struct {
	Rect    geometry.Rect
	Err     error
	Created []*FakePopup
}

// New implements submenu.PopupFactory.
func (f *PopupFactory) New(submenu.Trigger) (submenu.Popup, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	p := &FakePopup{FakeWidget: FakeWidget{Name: "popup", Rect: f.Rect, Mapped: true}}
	f.Created = append(f.Created, p)
	return p, nil
}

// Last returns the most recently created popup.
func (f *PopupFactory) Last() *FakePopup {
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}

// FakeMenu is an in-memory submenu.ParentMenu.
type FakeMenu struct {
	Rows       []submenu.Widget
	CloseCount int
	sigs       signals
}

func (m *FakeMenu) OnClosed(fn func()) submenu.Handle { return m.sigs.add(sigClosed, fn) }
func (m *FakeMenu) Disconnect(h submenu.Handle)       { m.sigs.remove(h) }
func (m *FakeMenu) Items() []submenu.Widget           { return m.Rows }

// Close records the call and emits closed.
func (m *FakeMenu) Close() {
	m.CloseCount++
	m.sigs.emit(sigClosed)
}

// Connected returns the number of live handlers.
func (m *FakeMenu) Connected() int { return m.sigs.count() }

// FakeOverlay is an in-memory submenu.Overlay.
type FakeOverlay struct {
	Added   int
	Removed int
	Live    []submenu.Popup
}

func (o *FakeOverlay) Add(p submenu.Popup) {
	o.Added++
	o.Live = append(o.Live, p)
}

func (o *FakeOverlay) Remove(p submenu.Popup) {
	o.Removed++
	for i, l := range o.Live {
		if l == p {
			o.Live = append(o.Live[:i], o.Live[i+1:]...)
			return
		}
	}
}

// FakePointer is a settable submenu.PointerSource.
type FakePointer struct {
	P     geometry.Point
	Known bool
}

// MoveTo sets a known pointer position.
func (f *FakePointer) MoveTo(x, y float64) {
	f.P = geometry.Point{X: x, Y: y}
	f.Known = true
}

// Lose marks the pointer position unknown.
func (f *FakePointer) Lose() { f.Known = false }

func (f *FakePointer) Pointer() (geometry.Point, bool) {
	return f.P, f.Known
}

// FakeOpener records opened URIs.
type FakeOpener struct {
	URIs []string
	Err  error
}

func (o *FakeOpener) OpenURI(uri string) error {
	o.URIs = append(o.URIs, uri)
	return o.Err
}

// ErrPopup is a canned popup creation failure.
var ErrPopup = errors.New("popup unavailable")
