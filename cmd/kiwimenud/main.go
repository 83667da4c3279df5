// Package main is the entry point for the kiwimenud panel daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/jmylchreest/kiwimenu/internal/config"
	"github.com/jmylchreest/kiwimenu/internal/display"
	"github.com/jmylchreest/kiwimenu/internal/launcher"
	"github.com/jmylchreest/kiwimenu/internal/layout"
	"github.com/jmylchreest/kiwimenu/internal/menu"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/settings"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
	"github.com/jmylchreest/kiwimenu/internal/theme"
)

const appID = "io.github.jmylchreest.kiwimenud"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/kiwimenu/kiwimenu.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("kiwimenud version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	run(logger, *configPath)
}

// submenuConfig maps the [submenu] table onto controller tuning.
func submenuConfig(cfg *config.Config) submenu.Config {
	return submenu.Config{
		OpenDelay:    cfg.Submenu.OpenDelay.Duration(),
		PollInterval: cfg.Submenu.ClosePoll.Duration(),
		Tolerance:    cfg.Tolerance(),
	}
}

// renderContext builds the per-open render state from the current settings.
func renderContext(store *settings.Store, displayName string) menu.Context {
	return menu.Context{
		DisplayName:     displayName,
		Enabled:         store.GetBoolean,
		AppStoreCommand: strings.Fields(store.GetString(settings.KeyAppStoreCommand)),
	}
}

func run(logger *slog.Logger, configPath string) {
	logger.Info("starting kiwimenud", "version", version)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app := adw.NewApplication(appID, 0)

	// Everything below is owned by the GTK main loop.
	var (
		themeLoader   *theme.Loader
		menuWindow    *display.MenuWindow
		panel         *display.Panel
		recentWatcher *recent.Watcher
		configWatcher *config.Watcher
		running       atomic.Bool
	)

	stop := func() {
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if configWatcher != nil {
			configWatcher.Stop()
			configWatcher = nil
		}
		if recentWatcher != nil {
			if err := recentWatcher.Stop(); err != nil {
				logger.Warn("error stopping recent items watcher", "error", err)
			}
			recentWatcher = nil
		}
		if panel != nil {
			panel.Destroy()
			panel = nil
		}
		if menuWindow != nil {
			menuWindow.Destroy()
			menuWindow = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
		case <-ctx.Done():
			return
		}

		display.Dispatch(func() {
			if running.Load() {
				stop()
			}
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		themeLoader = theme.NewLoader(display.Dispatch, logger)
		themeLoader.LoadTheme(cfg.Theme.Name)
		themeLoader.Apply(nil)
		themeLoader.StartHotReload()

		store := settings.New(cfg.Settings, logger)
		store.SetDispatcher(display.Dispatch)

		entries := layout.Entries(cfg.LayoutPath(), logger)
		icons := layout.Icons(cfg.IconsPath(), logger)
		logger.Info("layout loaded", "entries", len(entries), "icons", len(icons))

		l := launcher.New(logger, launcher.WithTimeout(cfg.Session.QueryTimeout.Duration()))
		source := recent.NewSource(cfg.RecentPath(), cfg.Submenu.MaxItems, logger)

		// The display name is looked up off the loop so a slow bus never
		// stalls startup. Until it arrives the logout label has no name.
		var displayName string
		go func() {
			qctx, qcancel := context.WithTimeout(ctx, cfg.Session.QueryTimeout.Duration())
			defer qcancel()
			name := l.DisplayName(qctx)
			display.Dispatch(func() { displayName = name })
		}()

		place := display.PlacementFromConfig(cfg.Panel)
		monitor := display.MonitorFor(place, logger)
		tracker := display.NewPointerTracker(cfg.Submenu.BridgeGrace.Duration())

		menuWindow = display.NewMenuWindow(display.MenuOptions{
			App:         &app.Application,
			Placement:   place,
			Monitor:     monitor,
			Tracker:     tracker,
			Recent:      source.Load,
			Opener:      l,
			Executor:    l,
			Submenu:     submenuConfig(cfg),
			ColorScheme: cfg.Theme.ColorScheme,
			Logger:      logger,
		})

		panel = display.NewPanel(display.PanelOptions{
			App:       &app.Application,
			Placement: place,
			Monitor:   monitor,
			Menu:      menuWindow,
			Settings:  store,
			Launcher:  l,
			Nodes: func() []menu.Node {
				return menu.Render(entries, renderContext(store, displayName))
			},
			Icons:             icons,
			IconDir:           cfg.IconDir(),
			ActivitiesCommand: cfg.Panel.ActivitiesCommand,
			QueryTimeout:      cfg.Session.QueryTimeout.Duration(),
			ColorScheme:       cfg.Theme.ColorScheme,
			Logger:            logger,
		})
		panel.Present()

		recentWatcher, err = recent.NewWatcher(source.Path, logger)
		if err != nil {
			logger.Warn("failed to create recent items watcher", "error", err)
		} else {
			recentWatcher.SetChangeCallback(func() {
				display.Dispatch(func() {
					if menuWindow != nil {
						menuWindow.Refresh()
					}
				})
			})
			if err := recentWatcher.Start(); err != nil {
				logger.Warn("failed to start recent items watcher", "error", err)
			}
		}

		configWatcher, err = config.NewWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.Config) {
				display.Dispatch(func() {
					if menuWindow == nil {
						return
					}
					menuWindow.SetSubmenuConfig(submenuConfig(newConfig))
					tracker.SetGrace(newConfig.Submenu.BridgeGrace.Duration())
					store.Update(newConfig.Settings)

					if newConfig.LayoutPath() != cfg.LayoutPath() {
						entries = layout.Entries(newConfig.LayoutPath(), logger)
					}
					if newConfig.IconsPath() != cfg.IconsPath() || newConfig.IconDir() != cfg.IconDir() {
						panel.SetIcons(layout.Icons(newConfig.IconsPath(), logger), newConfig.IconDir())
					}
					if newConfig.Theme.Name != cfg.Theme.Name {
						themeLoader.StopHotReload()
						themeLoader.LoadTheme(newConfig.Theme.Name)
						themeLoader.StartHotReload()
					}
					if newConfig.Panel.Position != cfg.Panel.Position ||
						newConfig.Panel.Height != cfg.Panel.Height ||
						newConfig.Panel.Monitor != cfg.Panel.Monitor {
						logger.Info("panel placement changes take effect after a restart")
					}
					if newConfig.RecentPath() != cfg.RecentPath() || newConfig.Submenu.MaxItems != cfg.Submenu.MaxItems {
						logger.Info("recent items source changes take effect after a restart")
					}

					cfg = newConfig
				})
			})
			configWatcher.SetErrorCallback(func(err error) {
				logger.Warn("ignoring invalid config", "error", err)
			})
			if err := configWatcher.Start(cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		// Panel windows keep the application alive; hold it anyway so a
		// compositor closing the bar does not end the daemon.
		app.Hold()

		logger.Info("kiwimenud ready", "position", cfg.Panel.Position, "theme", themeLoader.CurrentTheme())
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stop()
		running.Store(false)
	})

	// Flags are parsed above; GApplication only sees the program name.
	status := app.Run([]string{os.Args[0]})
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("kiwimenud stopped")
}
