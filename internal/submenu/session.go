package submenu

import "github.com/jmylchreest/kiwimenu/internal/geometry"

type disconnecter interface {
	Disconnect(h Handle)
}

type connection struct {
	target disconnecter
	handle Handle
}

func (c connection) disconnect() {
	if c.target == nil || c.handle == 0 {
		return
	}
	c.target.Disconnect(c.handle)
}

// Session is the state of one open popout. A new one is created on every open.
type Session struct {
	popup   Popup
	handles []connection
	token   Token

	chromeAdded       bool
	managerRegistered bool
	closing           bool

	// Last classification, for diagnostics only. Never used for decisions.
	lastPointer geometry.Point
	lastState   geometry.PointerState
	observed    bool
}

func newSession(p Popup) *Session {
	return &Session{popup: p}
}

func (s *Session) connect(target disconnecter, h Handle) {
	s.handles = append(s.handles, connection{target: target, handle: h})
}

func (s *Session) disconnectAll() {
	for _, conn := range s.handles {
		conn.disconnect()
	}
	s.handles = nil
}

func (s *Session) observe(p geometry.Point, st geometry.PointerState) geometry.PointerState {
	s.lastPointer = p
	s.lastState = st
	s.observed = true
	return st
}

func (s *Session) clearGeometry() {
	s.lastPointer = geometry.Point{}
	s.lastState = geometry.Outside
	s.observed = false
}

// Token returns the arbiter token held by the session.
func (s *Session) Token() Token {
	return s.token
}

// Popup returns the session's popout surface.
func (s *Session) Popup() Popup {
	return s.popup
}

// LastClassification returns the most recent pointer classification.
// ok is false before the first poll.
func (s *Session) LastClassification() (geometry.Point, geometry.PointerState, bool) {
	return s.lastPointer, s.lastState, s.observed
}
