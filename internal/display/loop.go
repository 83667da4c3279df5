package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/kiwimenu/internal/schedule"
)

// Loop runs scheduler timers on the GLib main context.
type Loop struct{}

var _ schedule.Loop = Loop{}

// TimeoutAdd implements schedule.Loop.
func (Loop) TimeoutAdd(d time.Duration, fn func() bool) schedule.SourceID {
	ms := max(d.Milliseconds(), 1)
	return schedule.SourceID(glib.TimeoutAdd(uint(ms), fn))
}

// SourceRemove implements schedule.Loop.
func (Loop) SourceRemove(id schedule.SourceID) {
	if id == 0 {
		return
	}
	glib.SourceRemove(glib.SourceHandle(id))
}

// Dispatch runs fn on the main context. It is safe to call from any goroutine.
func Dispatch(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}
