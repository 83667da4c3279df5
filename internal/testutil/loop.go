// Package testutil provides deterministic stand-ins for the GLib main loop and
// host widgets so hover behaviour can be exercised without a display.
package testutil

import (
	"sort"
	"time"

	"github.com/jmylchreest/kiwimenu/internal/schedule"
)

type source struct {
	id       schedule.SourceID
	interval time.Duration
	due      time.Duration
	fn       func() bool
}

// Loop is a manually advanced event loop with virtual time.
type Loop struct {
	now     time.Duration
	lastID  schedule.SourceID
	sources map[schedule.SourceID]*source
}

// NewLoop returns an empty loop at virtual time zero.
func NewLoop() *Loop {
	return &Loop{sources: make(map[schedule.SourceID]*source)}
}

// TimeoutAdd implements schedule.Loop.
func (l *Loop) TimeoutAdd(d time.Duration, fn func() bool) schedule.SourceID {
	l.lastID++
	l.sources[l.lastID] = &source{id: l.lastID, interval: d, due: l.now + d, fn: fn}
	return l.lastID
}

// SourceRemove implements schedule.Loop.
func (l *Loop) SourceRemove(id schedule.SourceID) {
	delete(l.sources, id)
}

// Now returns the virtual time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return l.now
}

// Pending returns the number of live sources.
func (l *Loop) Pending() int {
	return len(l.sources)
}

// Advance moves virtual time forward by d, dispatching every source that
// comes due in order. Sources added by callbacks are dispatched too if they
// fall inside the window.
func (l *Loop) Advance(d time.Duration) {
	target := l.now + d
	for {
		next := l.nextDue(target)
		if next == nil {
			break
		}
		l.now = next.due
		keep := next.fn()
		if _, live := l.sources[next.id]; !live {
			continue
		}
		if keep {
			next.due += next.interval
		} else {
			delete(l.sources, next.id)
		}
	}
	l.now = target
}

func (l *Loop) nextDue(limit time.Duration) *source {
	due := make([]*source, 0, len(l.sources))
	for _, s := range l.sources {
		if s.due <= limit {
			due = append(due, s)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].id < due[j].id
		}
		return due[i].due < due[j].due
	})
	return due[0]
}
