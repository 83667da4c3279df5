package submenu

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/schedule"
)

// State is the lifecycle state of a popout.
type State int

const (
	Closed State = iota
	OpenPending
	Open
)

func (s State) String() string {
	switch s {
	case OpenPending:
		return "open-pending"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// CloseReason records why a popout closed.
type CloseReason int

const (
	ReasonNone CloseReason = iota
	ReasonPointerLeft
	ReasonTriggerLeft
	ReasonParentClosed
	ReasonTriggerDestroyed
	ReasonItemActivated
	ReasonSiblingHovered
	ReasonPreempted
	ReasonPopupDismissed
	ReasonExplicit
)

func (r CloseReason) String() string {
	switch r {
	case ReasonPointerLeft:
		return "pointer-left"
	case ReasonTriggerLeft:
		return "trigger-left"
	case ReasonParentClosed:
		return "parent-closed"
	case ReasonTriggerDestroyed:
		return "trigger-destroyed"
	case ReasonItemActivated:
		return "item-activated"
	case ReasonSiblingHovered:
		return "sibling-hovered"
	case ReasonPreempted:
		return "preempted"
	case ReasonPopupDismissed:
		return "popup-dismissed"
	case ReasonExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// Config holds the controller's tuning values.
type Config struct {
	OpenDelay    time.Duration
	PollInterval time.Duration
	Tolerance    geometry.Tolerance
}

// DefaultConfig returns the stock tuning values.
func DefaultConfig() Config {
	return Config{
		OpenDelay:    schedule.DefaultOpenDelay,
		PollInterval: schedule.DefaultPollInterval,
		Tolerance:    geometry.DefaultTolerances(),
	}
}

// Host bundles the collaborators a controller needs.
type Host struct {
	Loop     schedule.Loop
	Trigger  Trigger
	Parent   ParentMenu
	Overlay  Overlay
	Arbiter  *Arbiter
	Pointer  PointerSource
	NewPopup PopupFactory
	// Recent returns the records to show; it is called on every open.
	Recent func() []recent.Record
	Opener URIOpener
}

func (h Host) validate() error {
	switch {
	case h.Loop == nil:
		return errors.New("submenu: host has no loop")
	case h.Trigger == nil:
		return errors.New("submenu: host has no trigger")
	case h.Parent == nil:
		return errors.New("submenu: host has no parent menu")
	case h.Overlay == nil:
		return errors.New("submenu: host has no overlay")
	case h.Arbiter == nil:
		return errors.New("submenu: host has no arbiter")
	case h.Pointer == nil:
		return errors.New("submenu: host has no pointer source")
	case h.NewPopup == nil:
		return errors.New("submenu: host has no popup factory")
	}
	return nil
}

// Controller owns the popout lifecycle for one trigger.
// All methods must be called from the loop goroutine.
type Controller struct {
	host   Host
	cfg    Config
	logger *slog.Logger
	sched  *schedule.Scheduler

	state     State
	session   *Session
	destroyed bool

	// Connections that live as long as the controller.
	handles []connection

	lastReason CloseReason
	onState    func(State)
}

// NewController attaches a controller to host.Trigger.
func NewController(host Host, cfg Config, logger *slog.Logger) (*Controller, error) {
	if err := host.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OpenDelay <= 0 {
		cfg.OpenDelay = schedule.DefaultOpenDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = schedule.DefaultPollInterval
	}

	c := &Controller{
		host:   host,
		cfg:    cfg,
		logger: logger,
		sched:  schedule.New(host.Loop),
	}
	c.attach()
	return c, nil
}

func (c *Controller) attach() {
	t := c.host.Trigger
	p := c.host.Parent
	c.handles = append(c.handles,
		connection{t, t.OnHoverEnter(c.handleTriggerEnter)},
		connection{t, t.OnHoverLeave(c.handleTriggerLeave)},
		connection{t, t.OnActivate(c.handleActivate)},
		connection{t, t.OnDestroy(c.Destroy)},
		connection{p, p.OnClosed(func() { c.closeWith(ReasonParentClosed) })},
	)
}

// SetStateCallback sets a function called after every state change.
func (c *Controller) SetStateCallback(fn func(State)) {
	c.onState = fn
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Session returns the live session, or nil when closed.
func (c *Controller) Session() *Session {
	return c.session
}

// LastCloseReason returns why the popout last closed.
func (c *Controller) LastCloseReason() CloseReason {
	return c.lastReason
}

// Config returns the controller's tuning values.
func (c *Controller) Config() Config {
	return c.cfg
}

// SetConfig replaces the tuning values. Running timers keep their old delays.
func (c *Controller) SetConfig(cfg Config) {
	if cfg.OpenDelay <= 0 {
		cfg.OpenDelay = schedule.DefaultOpenDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = schedule.DefaultPollInterval
	}
	c.cfg = cfg
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("submenu state changed", "from", c.state, "to", s)
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

func (c *Controller) handleTriggerEnter() {
	if c.destroyed {
		return
	}

	// Hovering any trigger closes whatever other popout is open right away.
	c.host.Arbiter.Preempt(c)

	switch c.state {
	case Closed:
		c.setState(OpenPending)
		c.sched.ScheduleOpen(c.cfg.OpenDelay, c.open)
	case OpenPending:
		// Timer already running.
	case Open:
		c.sched.CancelClose()
	}
}

func (c *Controller) handleTriggerLeave() {
	switch c.state {
	case OpenPending:
		c.sched.CancelOpen()
		c.lastReason = ReasonTriggerLeft
		c.setState(Closed)
	case Open:
		c.scheduleClose()
	}
}

func (c *Controller) handleActivate() {
	if c.destroyed {
		return
	}
	switch c.state {
	case Closed, OpenPending:
		c.sched.CancelOpen()
		c.open()
	case Open:
		c.sched.CancelClose()
	}
}

func (c *Controller) handlePopupEnter() {
	c.sched.CancelClose()
}

func (c *Controller) handlePopupLeave() {
	if c.state == Open {
		c.scheduleClose()
	}
}

func (c *Controller) handleItemActivated(rec recent.Record) {
	c.closeWith(ReasonItemActivated)
	c.host.Parent.Close()

	if c.host.Opener == nil {
		return
	}
	if err := c.host.Opener.OpenURI(rec.URI); err != nil {
		c.logger.Warn("failed to open recent item", "uri", rec.URI, "error", err)
	}
}

func (c *Controller) scheduleClose() {
	c.sched.ScheduleClose(c.cfg.PollInterval, c.PointerState, func() {
		c.closeWith(ReasonPointerLeft)
	})
}

// PointerState classifies the live pointer position against the live trigger
// and popout geometry.
func (c *Controller) PointerState() geometry.PointerState {
	if c.session == nil || c.session.popup == nil {
		return geometry.Outside
	}

	p, ok := c.host.Pointer.Pointer()
	if !ok {
		return c.session.observe(p, geometry.Outside)
	}

	var trigger, popup *geometry.Rect
	if r, ok := c.host.Trigger.Geometry(); ok {
		trigger = &r
	}
	if r, ok := c.session.popup.Geometry(); ok {
		popup = &r
	}

	return c.session.observe(p, geometry.Classify(p, trigger, popup, c.cfg.Tolerance))
}

// Open opens the popout immediately, skipping the open delay.
func (c *Controller) Open() {
	if c.destroyed {
		return
	}
	c.sched.CancelOpen()
	c.open()
}

func (c *Controller) open() {
	if c.destroyed || c.state == Open {
		return
	}

	popup, err := c.host.NewPopup(c.host.Trigger)
	if err != nil {
		c.logger.Warn("failed to create recent items popout", "error", err)
		c.setState(Closed)
		return
	}

	s := newSession(popup)
	c.session = s

	tok, fresh := c.host.Arbiter.Claim(c)
	if !fresh {
		// Another session for this trigger already holds the claim.
		c.logger.Warn("popout already registered, ignoring open", "token", tok)
		c.session = nil
		popup.Destroy()
		return
	}
	s.token = tok
	s.managerRegistered = true

	c.host.Overlay.Add(popup)
	s.chromeAdded = true

	popup.SetItems(c.records())

	s.connect(popup, popup.OnHoverEnter(c.handlePopupEnter))
	s.connect(popup, popup.OnHoverLeave(c.handlePopupLeave))
	s.connect(popup, popup.OnItemActivated(c.handleItemActivated))
	s.connect(popup, popup.OnOpenStateChanged(func(open bool) {
		if !open {
			c.closeWith(ReasonPopupDismissed)
		}
	}))
	s.connect(popup, popup.OnDestroy(func() { c.closeWith(ReasonPopupDismissed) }))

	for _, item := range c.host.Parent.Items() {
		if item == nil || sameWidget(item, c.host.Trigger) {
			continue
		}
		s.connect(item, item.OnHoverEnter(func() { c.closeWith(ReasonSiblingHovered) }))
	}

	popup.Open()
	c.setState(Open)
	c.logger.Debug("recent items popout opened", "token", tok)
}

func (c *Controller) records() []recent.Record {
	if c.host.Recent == nil {
		return nil
	}
	return c.host.Recent()
}

// Refresh repopulates an open popout.
func (c *Controller) Refresh() {
	if c.state != Open || c.session == nil || c.session.popup == nil {
		return
	}
	c.session.popup.SetItems(c.records())
}

// Close closes the popout. It is safe to call in any state.
func (c *Controller) Close() {
	c.closeWith(ReasonExplicit)
}

// Dismiss implements Owner.
func (c *Controller) Dismiss() {
	c.closeWith(ReasonPreempted)
}

func (c *Controller) closeWith(reason CloseReason) {
	if c.state == Closed && c.session == nil {
		c.sched.Cancel()
		return
	}
	c.lastReason = reason
	c.teardown()
	c.setState(Closed)
	c.logger.Debug("recent items popout closed", "reason", reason)
}

// teardown releases the session in a fixed order. It is idempotent.
func (c *Controller) teardown() {
	// Timers go first so no callback can fire against a released popup.
	c.sched.Cancel()

	s := c.session
	if s == nil || s.closing {
		return
	}
	s.closing = true

	s.disconnectAll()

	if s.managerRegistered {
		c.host.Arbiter.Release(s.token)
		s.managerRegistered = false
	}

	if s.chromeAdded {
		c.host.Overlay.Remove(s.popup)
		s.chromeAdded = false
	}

	if s.popup != nil {
		s.popup.Destroy()
		s.popup = nil
	}

	s.clearGeometry()
	c.session = nil
}

// Destroy closes the popout and detaches from the trigger and parent menu.
// The controller is inert afterwards.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.closeWith(ReasonTriggerDestroyed)
	c.destroyed = true

	for _, conn := range c.handles {
		conn.disconnect()
	}
	c.handles = nil
}

// sameWidget compares widgets by identity without panicking on
// non-comparable dynamic types.
func sameWidget(a Widget, b Widget) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
