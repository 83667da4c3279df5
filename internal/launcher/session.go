package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	login1Dest    = "org.freedesktop.login1"
	login1Path    = "/org/freedesktop/login1"
	login1Manager = "org.freedesktop.login1.Manager"
	login1Session = "org.freedesktop.login1.Session"
)

// LoginWindowCommand switches to the display manager's greeter.
var LoginWindowCommand = []string{"gdmflexiserver"}

// ErrNoSession is returned when a user has no graphical session.
var ErrNoSession = errors.New("no graphical session")

// Session is one logind session.
type Session struct {
	ID    string
	UID   uint32
	User  string
	Seat  string
	Class string
	Path  dbus.ObjectPath
}

// Graphical reports whether the session is a user session on a seat.
func (s Session) Graphical() bool {
	return s.Seat != "" && s.Seat != "-" && s.Class == "user"
}

// PickSession returns the first graphical session belonging to user.
func PickSession(sessions []Session, user string) (Session, bool) {
	for _, s := range sessions {
		if s.User == user && s.Graphical() {
			return s, true
		}
	}
	return Session{}, false
}

// listedSession mirrors the a(susso) rows of ListSessions.
type listedSession struct {
	ID   string
	UID  uint32
	User string
	Seat string
	Path dbus.ObjectPath
}

// Sessions lists logind sessions with their class filled in.
func (l *Launcher) Sessions(ctx context.Context) ([]Session, error) {
	conn, err := l.systemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var rows []listedSession
	err = conn.Object(login1Dest, login1Path).
		CallWithContext(ctx, login1Manager+".ListSessions", 0).
		Store(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, r := range rows {
		s := Session{ID: r.ID, UID: r.UID, User: r.User, Seat: r.Seat, Path: r.Path}

		v, err := conn.Object(login1Dest, r.Path).GetProperty(login1Session + ".Class")
		if err == nil {
			s.Class, _ = v.Value().(string)
		} else {
			l.logger.Debug("failed to read session class", "session", r.ID, "error", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// FindSession returns the graphical session of user.
func (l *Launcher) FindSession(ctx context.Context, user string) (Session, error) {
	sessions, err := l.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	s, ok := PickSession(sessions, user)
	if !ok {
		return Session{}, fmt.Errorf("%w for %s", ErrNoSession, user)
	}
	return s, nil
}

// ActivateSession brings session id to the foreground.
func (l *Launcher) ActivateSession(ctx context.Context, id string) error {
	conn, err := l.systemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := conn.Object(login1Dest, login1Path).
		CallWithContext(ctx, login1Manager+".ActivateSession", 0, id).Err; err != nil {
		return fmt.Errorf("failed to activate session %s: %w", id, err)
	}
	return nil
}

// GotoLoginWindow switches to the greeter.
func (l *Launcher) GotoLoginWindow() error {
	return l.Spawn(LoginWindowCommand)
}

// SwitchUser activates user's existing session, or opens the greeter when
// there is none. Switching to the current user does nothing.
func (l *Launcher) SwitchUser(ctx context.Context, user string) error {
	if user == "" || user == CurrentUsername() {
		return nil
	}

	s, err := l.FindSession(ctx, user)
	if err == nil {
		return l.ActivateSession(ctx, s.ID)
	}
	l.logger.Debug("no session to activate, opening login window", "user", user, "error", err)
	return l.GotoLoginWindow()
}
