// Package schedule implements the debounced open timer and the polling close
// timer used by hover-driven submenus.
//
// Timers run on a Loop, which is expected to be single-threaded: callbacks are
// dispatched one at a time on the same goroutine that schedules and cancels them.
package schedule

import (
	"time"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
)

// Default delays.
const (
	DefaultOpenDelay    = 500 * time.Millisecond
	DefaultPollInterval = 200 * time.Millisecond
)

// SourceID identifies a timer registered on a Loop. Zero is never a live source.
type SourceID uint

// Loop is the event loop timers are attached to.
type Loop interface {
	// TimeoutAdd calls fn after d and then every d for as long as fn returns true.
	TimeoutAdd(d time.Duration, fn func() bool) SourceID
	// SourceRemove cancels a source. Removing an unknown source is a no-op.
	SourceRemove(id SourceID)
}

// Predicate reports the current pointer classification.
type Predicate func() geometry.PointerState

// Scheduler owns one open timer and one close poll.
// It is not safe for concurrent use; call it from the loop goroutine only.
type Scheduler struct {
	loop    Loop
	openID  SourceID
	closeID SourceID
}

// New creates a scheduler attached to loop.
func New(loop Loop) *Scheduler {
	return &Scheduler{loop: loop}
}

// ScheduleOpen arms the open timer, restarting it if it is already running.
// action runs once, after a quiet period of after.
func (s *Scheduler) ScheduleOpen(after time.Duration, action func()) {
	s.CancelOpen()
	s.openID = s.loop.TimeoutAdd(after, func() bool {
		s.openID = 0
		action()
		return false
	})
}

// CancelOpen stops a pending open. It is a no-op when nothing is pending.
func (s *Scheduler) CancelOpen() {
	if s.openID == 0 {
		return
	}
	s.loop.SourceRemove(s.openID)
	s.openID = 0
}

// OpenPending reports whether the open timer is armed.
func (s *Scheduler) OpenPending() bool {
	return s.openID != 0
}

// ScheduleClose starts polling predicate every interval, replacing any poll in
// progress. Inside stops the poll without closing, Bridge keeps polling, and
// Outside calls onClose once and stops.
func (s *Scheduler) ScheduleClose(interval time.Duration, predicate Predicate, onClose func()) {
	s.CancelClose()
	s.closeID = s.loop.TimeoutAdd(interval, func() bool {
		switch predicate() {
		case geometry.Inside:
			s.closeID = 0
			return false
		case geometry.Bridge:
			return true
		default:
			s.closeID = 0
			onClose()
			return false
		}
	})
}

// CancelClose stops a pending close poll. It is a no-op when nothing is pending.
func (s *Scheduler) CancelClose() {
	if s.closeID == 0 {
		return
	}
	s.loop.SourceRemove(s.closeID)
	s.closeID = 0
}

// ClosePending reports whether the close poll is running.
func (s *Scheduler) ClosePending() bool {
	return s.closeID != 0
}

// Cancel stops both timers.
func (s *Scheduler) Cancel() {
	s.CancelOpen()
	s.CancelClose()
}
