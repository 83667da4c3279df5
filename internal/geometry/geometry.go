// Package geometry classifies the pointer against a submenu trigger and its popout.
//
// All values are screen coordinates and are recomputed on every query; nothing here
// holds state, so Classify can be called from a poll loop at any rate.
package geometry

import "fmt"

// Default tolerances, in pixels.
const (
	DefaultTolerance           = 8.0
	DefaultBridgeLeftTolerance = 4.0
)

// Point is a pointer position.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle spanning (X1,Y1) to (X2,Y2).
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// NewRect builds a Rect from an origin and a size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Valid reports whether the rectangle has a non-zero area.
func (r Rect) Valid() bool {
	return r.Width() > 0 && r.Height() > 0
}

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{X1: r.X1 - margin, Y1: r.Y1 - margin, X2: r.X2 + margin, Y2: r.Y2 + margin}
}

// Contains reports whether p lies within r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", r.X1, r.Y1, r.X2, r.Y2)
}

// VerticalOverlap returns the shared vertical band of a and b.
// ok is false when the extents do not overlap.
func VerticalOverlap(a, b Rect) (top, bottom float64, ok bool) {
	top = max(a.Y1, b.Y1)
	bottom = min(a.Y2, b.Y2)
	return top, bottom, top < bottom
}

// PointerState is the classification of the pointer.
type PointerState int

const (
	Outside PointerState = iota
	Inside
	Bridge
)

func (s PointerState) String() string {
	switch s {
	case Inside:
		return "inside"
	case Bridge:
		return "bridge"
	default:
		return "outside"
	}
}

// Side is the side of the trigger the popup opens on.
type Side int

const (
	SideRight Side = iota
	SideLeft
	// SideAuto picks the side from the popup's position relative to the trigger's centre.
	SideAuto
)

// ParseSide converts a config string into a Side. Unknown values map to SideRight.
func ParseSide(s string) Side {
	switch s {
	case "left":
		return SideLeft
	case "auto":
		return SideAuto
	default:
		return SideRight
	}
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideAuto:
		return "auto"
	default:
		return "right"
	}
}

// Tolerance configures how forgiving Classify is.
type Tolerance struct {
	// General expands both rectangles and the far end of the bridge.
	General float64
	// BridgeLeft is how far the bridge reaches back over the trigger's edge.
	// It is clamped to the gap width.
	BridgeLeft float64
	Side       Side
}

// DefaultTolerances returns the stock tuning values.
func DefaultTolerances() Tolerance {
	return Tolerance{
		General:    DefaultTolerance,
		BridgeLeft: DefaultBridgeLeftTolerance,
		Side:       SideRight,
	}
}

// Classify reports where p lies relative to the trigger, the popup, and the
// corridor between them. A nil or zero-area rectangle always yields Outside.
func Classify(p Point, trigger, popup *Rect, tol Tolerance) PointerState {
	if trigger == nil || popup == nil || !trigger.Valid() || !popup.Valid() {
		return Outside
	}

	if trigger.Expand(tol.General).Contains(p) || popup.Expand(tol.General).Contains(p) {
		return Inside
	}

	top, bottom, ok := VerticalOverlap(*trigger, *popup)
	if !ok {
		return Outside
	}
	if p.Y < top-tol.General || p.Y > bottom+tol.General {
		return Outside
	}

	left, right := bridgeSpan(*trigger, *popup, tol)
	if p.X >= left && p.X <= right {
		return Bridge
	}
	return Outside
}

// bridgeSpan returns the horizontal extent of the corridor.
func bridgeSpan(trigger, popup Rect, tol Tolerance) (left, right float64) {
	side := tol.Side
	if side == SideAuto {
		side = SideRight
		if popup.X1+popup.Width()/2 < trigger.X1+trigger.Width()/2 {
			side = SideLeft
		}
	}

	if side == SideLeft {
		gap := max(trigger.X1-popup.X2, 0)
		return popup.X2 - tol.General, trigger.X1 + min(tol.BridgeLeft, gap)
	}

	gap := max(popup.X1-trigger.X2, 0)
	return trigger.X2 - min(tol.BridgeLeft, gap), popup.X1 + tol.General
}
