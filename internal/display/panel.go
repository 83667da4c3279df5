package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/kiwimenu/internal/config"
	"github.com/jmylchreest/kiwimenu/internal/launcher"
	"github.com/jmylchreest/kiwimenu/internal/layout"
	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/settings"
)

// ToggleUserSwitcher gates the panel's user switcher.
const ToggleUserSwitcher = "show-user-switcher"

// FallbackIcon is shown when no panel icon is configured.
const FallbackIcon = "start-here-symbolic"

// PanelOptions configures the panel bar.
type PanelOptions struct {
	App       *gtk.Application
	Placement Placement
	Monitor   *gdk.Monitor
	Menu      *MenuWindow
	Settings  *settings.Store
	Launcher  *launcher.Launcher
	// Nodes renders the menu; it is called every time the menu opens.
	Nodes             func() []menu.Node
	Icons             []layout.Icon
	IconDir           string
	ActivitiesCommand []string
	QueryTimeout      time.Duration
	ColorScheme       string
	Logger            *slog.Logger
}

// Panel is the bar hosting the logo button, the activities button and the
// user switcher.
type Panel struct {
	opts    PanelOptions
	logger  *slog.Logger
	surface *Surface

	logo       *gtk.Button
	logoImage  *gtk.Image
	activities *gtk.Button
	users      *gtk.MenuButton
	userList   *gtk.Box
	popover    *gtk.Popover

	subs []settings.Handle
}

// NewPanel creates the panel bar. Call Present to show it.
func NewPanel(opts PanelOptions) *Panel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = launcher.DefaultTimeout
	}

	p := &Panel{opts: opts, logger: logger}

	w := gtk.NewWindow()
	w.SetApplication(opts.App)
	w.SetDecorated(false)
	w.SetDefaultSize(-1, opts.Placement.Height)

	layershell.InitForWindow(w)
	layershell.SetLayer(w, layershell.LayerShellLayerTop)
	layershell.SetNamespace(w, "kiwimenu-panel")
	layershell.SetAnchor(w, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(w, layershell.LayerShellEdgeRight, true)
	layershell.SetAnchor(w, opts.Placement.edge(), true)
	layershell.SetAnchor(w, opts.Placement.oppositeEdge(), false)
	layershell.SetExclusiveZone(w, opts.Placement.Height)
	layershell.SetKeyboardMode(w, layershell.LayerShellKeyboardModeNone)
	setMonitor(w, opts.Monitor)
	p.surface = &Surface{window: w, place: opts.Placement}

	bar := gtk.NewBox(gtk.OrientationHorizontal, 4)
	bar.AddCSSClass("kiwimenu-panel")
	bar.AddCSSClass(colorSchemeClass(opts.ColorScheme))
	bar.SetSizeRequest(-1, opts.Placement.Height)
	w.SetChild(bar)

	p.logoImage = gtk.NewImage()
	p.logoImage.SetPixelSize(max(opts.Placement.Height-12, 12))
	p.logo = gtk.NewButton()
	p.logo.SetChild(p.logoImage)
	p.logo.SetHasFrame(false)
	p.logo.AddCSSClass("kiwimenu-logo")
	p.logo.ConnectClicked(p.ToggleMenu)
	bar.Append(p.logo)

	p.activities = gtk.NewButtonWithLabel("Activities")
	p.activities.SetHasFrame(false)
	p.activities.AddCSSClass("kiwimenu-activities")
	p.activities.ConnectClicked(p.activate)
	bar.Append(p.activities)

	spacer := gtk.NewBox(gtk.OrientationHorizontal, 0)
	spacer.SetHExpand(true)
	bar.Append(spacer)

	p.buildUserSwitcher()
	bar.Append(p.users)

	p.updateIcon()
	p.updateActivities()
	p.updateUserSwitcher()

	if opts.Settings != nil {
		p.subs = append(p.subs,
			opts.Settings.Connect(settings.KeyIcon, func(string) { p.updateIcon() }),
			opts.Settings.Connect(settings.KeyActivityMenuVisibility, func(string) { p.updateActivities() }),
			opts.Settings.Connect(ToggleUserSwitcher, func(string) { p.updateUserSwitcher() }),
		)
	}

	return p
}

// Present shows the panel.
func (p *Panel) Present() {
	p.surface.Present()
}

// ToggleMenu opens the menu under the logo, or closes it when open.
func (p *Panel) ToggleMenu() {
	m := p.opts.Menu
	if m == nil {
		return
	}
	if m.Visible() {
		m.Close()
		return
	}

	x := 0
	if r, ok := p.surface.WidgetRect(p.logo); ok {
		x = int(r.X1)
	}
	var nodes []menu.Node
	if p.opts.Nodes != nil {
		nodes = p.opts.Nodes()
	}
	m.Show(nodes, x)
}

// SetIcons replaces the selectable panel icons.
func (p *Panel) SetIcons(icons []layout.Icon, iconDir string) {
	p.opts.Icons = icons
	p.opts.IconDir = iconDir
	p.updateIcon()
}

// Destroy disconnects settings subscriptions and closes the panel window.
func (p *Panel) Destroy() {
	if p.opts.Settings != nil {
		for _, h := range p.subs {
			p.opts.Settings.Disconnect(h)
		}
	}
	p.subs = nil
	p.surface.Destroy()
}

func (p *Panel) updateIcon() {
	index := 0
	if p.opts.Settings != nil {
		index = p.opts.Settings.GetInt(settings.KeyIcon)
	}

	icon, ok := layout.SelectIcon(p.opts.Icons, index)
	switch {
	case !ok:
		p.logoImage.SetFromIconName(FallbackIcon)
	case icon.IsFile():
		p.logoImage.SetFromFile(icon.Resolve(p.opts.IconDir))
	default:
		p.logoImage.SetFromIconName(icon.Path)
	}
	p.logo.SetTooltipText(icon.Title)
}

func (p *Panel) updateActivities() {
	visible := true
	if p.opts.Settings != nil {
		visible = p.opts.Settings.GetBoolean(settings.KeyActivityMenuVisibility)
	}
	p.activities.SetVisible(visible)
}

func (p *Panel) activate() {
	if len(p.opts.ActivitiesCommand) == 0 || p.opts.Launcher == nil {
		p.ToggleMenu()
		return
	}
	if err := p.opts.Launcher.Spawn(p.opts.ActivitiesCommand); err != nil {
		p.logger.Warn("activities command failed", "error", err)
	}
}

func (p *Panel) buildUserSwitcher() {
	p.userList = gtk.NewBox(gtk.OrientationVertical, 0)
	p.userList.AddCSSClass("kiwimenu-users")

	p.popover = gtk.NewPopover()
	p.popover.SetChild(p.userList)
	p.popover.ConnectShow(p.loadAccounts)

	p.users = gtk.NewMenuButton()
	p.users.SetIconName("system-users-symbolic")
	p.users.SetHasFrame(false)
	p.users.SetPopover(p.popover)
	p.users.AddCSSClass("kiwimenu-user-switcher")
}

func (p *Panel) updateUserSwitcher() {
	visible := p.opts.Launcher != nil
	if visible && p.opts.Settings != nil {
		visible = p.opts.Settings.GetBoolean(ToggleUserSwitcher)
	}
	p.users.SetVisible(visible)
}

// loadAccounts queries AccountsService off the main loop and fills the list.
func (p *Panel) loadAccounts() {
	l := p.opts.Launcher
	if l == nil {
		return
	}
	timeout := p.opts.QueryTimeout

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		accounts, err := l.Accounts(ctx)
		if err != nil {
			p.logger.Debug("failed to list accounts", "error", err)
		}
		visible := launcher.VisibleAccounts(accounts, launcher.CurrentUsername())
		Dispatch(func() { p.fillUsers(visible) })
	}()
}

func (p *Panel) fillUsers(accounts []launcher.Account) {
	for child := p.userList.FirstChild(); child != nil; child = p.userList.FirstChild() {
		p.userList.Remove(child)
	}

	current := launcher.CurrentUsername()
	for _, a := range accounts {
		btn := gtk.NewButtonWithLabel(a.DisplayName())
		btn.SetHasFrame(false)
		btn.AddCSSClass("kiwimenu-item")
		if a.UserName == current {
			btn.AddCSSClass("kiwimenu-current-user")
			btn.SetSensitive(false)
		}
		btn.ConnectClicked(func() { p.switchTo(a.UserName) })
		p.userList.Append(btn)
	}

	if len(accounts) > 0 {
		p.userList.Append(gtk.NewSeparator(gtk.OrientationHorizontal))
	}
	login := gtk.NewButtonWithLabel("Login Window...")
	login.SetHasFrame(false)
	login.AddCSSClass("kiwimenu-item")
	login.ConnectClicked(func() { p.switchTo("") })
	p.userList.Append(login)
}

// switchTo activates user's session, or the login window when user is empty.
func (p *Panel) switchTo(user string) {
	p.popover.Popdown()
	l := p.opts.Launcher
	timeout := p.opts.QueryTimeout

	go func() {
		var err error
		if user == "" {
			err = l.GotoLoginWindow()
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			err = l.SwitchUser(ctx, user)
		}
		if err != nil {
			p.logger.Warn("user switch failed", "user", user, "error", err)
		}
	}()
}

// colorSchemeClass returns "light" or "dark" based on config or system preference.
func colorSchemeClass(scheme string) string {
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		return detectSystemColorScheme()
	}
}

// detectSystemColorScheme checks libadwaita for system dark mode preference.
func detectSystemColorScheme() string {
	if adw.StyleManagerGetDefault().Dark() {
		return "dark"
	}
	return "light"
}
