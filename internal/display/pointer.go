package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

// PointerTracker follows the pointer across the panel's surfaces.
// Wayland clients only see the pointer over their own surfaces, so once it has
// left every tracked surface the position is unknown, except for the last
// exit point which stays valid for the grace period.
type PointerTracker struct {
	grace time.Duration
	now   func() time.Time

	over   map[*Surface]bool
	last   geometry.Point
	known  bool
	leftAt time.Time
}

var _ submenu.PointerSource = (*PointerTracker)(nil)

// NewPointerTracker creates a tracker. grace may be zero.
func NewPointerTracker(grace time.Duration) *PointerTracker {
	return &PointerTracker{
		grace: grace,
		now:   time.Now,
		over:  make(map[*Surface]bool),
	}
}

// SetGrace changes how long the last exit point stays valid.
func (t *PointerTracker) SetGrace(grace time.Duration) {
	t.grace = grace
}

// Track starts following the pointer on s.
func (t *PointerTracker) Track(s *Surface) {
	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) { t.moved(s, s.ToPanel(x, y)) })
	motion.ConnectMotion(func(x, y float64) { t.moved(s, s.ToPanel(x, y)) })
	motion.ConnectLeave(func() { t.left(s) })
	s.window.AddController(motion)
}

// Forget drops s, typically because it is about to be destroyed.
func (t *PointerTracker) Forget(s *Surface) {
	if t.over[s] {
		t.left(s)
	}
	delete(t.over, s)
}

func (t *PointerTracker) moved(s *Surface, p geometry.Point) {
	t.over[s] = true
	t.last = p
	t.known = true
}

func (t *PointerTracker) left(s *Surface) {
	t.over[s] = false
	if !t.overAny() {
		t.leftAt = t.now()
	}
}

func (t *PointerTracker) overAny() bool {
	for _, over := range t.over {
		if over {
			return true
		}
	}
	return false
}

// Pointer implements submenu.PointerSource.
func (t *PointerTracker) Pointer() (geometry.Point, bool) {
	if !t.known {
		return geometry.Point{}, false
	}
	if t.overAny() {
		return t.last, true
	}
	if t.grace > 0 && t.now().Sub(t.leftAt) < t.grace {
		return t.last, true
	}
	return geometry.Point{}, false
}
