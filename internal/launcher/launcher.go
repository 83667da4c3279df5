package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalInterface = "org.freedesktop.portal.OpenURI"

	// DefaultTimeout bounds every D-Bus round trip.
	DefaultTimeout = 2 * time.Second
)

// ForceQuitCommand is the interactive window killer.
var ForceQuitCommand = []string{menu.ForceQuitCommand}

// ErrNoCommand is returned when an entry has nothing to run.
var ErrNoCommand = errors.New("no command")

// Compile-time interface checks.
var (
	_ menu.Executor     = (*Launcher)(nil)
	_ submenu.URIOpener = (*Launcher)(nil)
)

// Runner starts a process and returns without waiting for it.
type Runner func(name string, args ...string) error

// Launcher executes menu actions.
type Launcher struct {
	logger  *slog.Logger
	timeout time.Duration
	run     Runner

	sessionBus func() (*dbus.Conn, error)
	systemBus  func() (*dbus.Conn, error)
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithTimeout sets the D-Bus call timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithRunner replaces the process starter.
func WithRunner(r Runner) Option {
	return func(l *Launcher) { l.run = r }
}

// WithoutBus disables every D-Bus path, leaving only the process fallbacks.
func WithoutBus() Option {
	return func(l *Launcher) {
		noBus := func() (*dbus.Conn, error) { return nil, errors.New("bus disabled") }
		l.sessionBus = noBus
		l.systemBus = noBus
	}
}

// New creates a launcher.
func New(logger *slog.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Launcher{
		logger:     logger,
		timeout:    DefaultTimeout,
		run:        startDetached,
		sessionBus: dbus.SessionBus,
		systemBus:  dbus.SystemBus,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// startDetached starts the process in its own session and reaps it in the
// background.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Spawn starts cmds[0] with the remaining elements as arguments.
func (l *Launcher) Spawn(cmds []string) error {
	if len(cmds) == 0 || strings.TrimSpace(cmds[0]) == "" {
		return ErrNoCommand
	}
	l.logger.Debug("spawning command", "argv", cmds)
	if err := l.run(cmds[0], cmds[1:]...); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", cmds[0], err)
	}
	return nil
}

// ForceQuit starts the interactive window killer.
func (l *Launcher) ForceQuit() error {
	return l.Spawn(ForceQuitCommand)
}

// OpenURI opens uri with the user's default handler. Remote URIs go through
// the desktop portal when it is available; local files and portal failures
// fall back to xdg-open.
func (l *Launcher) OpenURI(uri string) error {
	if uri == "" {
		return errors.New("empty uri")
	}

	if usePortal(uri) {
		err := l.portalOpen(uri)
		if err == nil {
			return nil
		}
		l.logger.Debug("portal OpenURI failed, falling back to xdg-open", "uri", uri, "error", err)
	}

	if err := l.run("xdg-open", uri); err != nil {
		return fmt.Errorf("failed to open %s: %w", uri, err)
	}
	return nil
}

// usePortal reports whether the portal accepts uri. The portal rejects
// file URIs without a file descriptor.
func usePortal(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Scheme != "file"
}

func (l *Launcher) portalOpen(uri string) error {
	conn, err := l.sessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	var handle dbus.ObjectPath
	err = conn.Object(portalDest, portalPath).CallWithContext(ctx,
		portalInterface+".OpenURI", 0,
		"", // parent window
		uri,
		map[string]dbus.Variant{},
	).Store(&handle)
	if err != nil {
		return fmt.Errorf("portal OpenURI: %w", err)
	}
	return nil
}
