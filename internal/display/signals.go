package display

import (
	"slices"

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

type handler struct {
	sig signal
	fn  any
}

// handlers is a Go-side signal registry. GTK signals are connected once per
// widget and fanned out from here, so disconnecting never touches the toolkit.
type handlers struct {
	last submenu.Handle
	fns  map[submenu.Handle]handler
}

func (h *handlers) connect(sig signal, fn any) submenu.Handle {
	if h.fns == nil {
		h.fns = make(map[submenu.Handle]handler)
	}
	h.last++
	h.fns[h.last] = handler{sig: sig, fn: fn}
	return h.last
}

func (h *handlers) disconnect(id submenu.Handle) {
	delete(h.fns, id)
}

func (h *handlers) clear() {
	clear(h.fns)
}

// snapshot returns the handlers for sig in connection order. Handlers may
// disconnect themselves or others while the snapshot is being run.
func (h *handlers) snapshot(sig signal) []submenu.Handle {
	var ids []submenu.Handle
	for id, fn := range h.fns {
		if fn.sig == sig {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (h *handlers) emit(sig signal) {
	for _, id := range h.snapshot(sig) {
		if fn, ok := h.fns[id]; ok {
			fn.fn.(func())()
		}
	}
}

func (h *handlers) emitRecord(rec recent.Record) {
	for _, id := range h.snapshot(sigItem) {
		if fn, ok := h.fns[id]; ok {
			fn.fn.(func(recent.Record))(rec)
		}
	}
}

func (h *handlers) emitOpen(open bool) {
	for _, id := range h.snapshot(sigOpenState) {
		if fn, ok := h.fns[id]; ok {
			fn.fn.(func(bool))(open)
		}
	}
}
