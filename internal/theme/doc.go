// Package theme loads the CSS for the panel, the menu and the Recent Items
// popout. Themes are looked up in ~/.config/kiwimenu/themes/ first and then
// among the bundled themes; user themes are reloaded when their files change.
package theme
