// Package display implements the panel on GTK4 and Wayland layer-shell.
//
// It provides the toolkit side of the submenu host interfaces: menu rows and
// triggers, the Recent Items popout, the overlay the popout is shown on, and a
// GLib main loop for the delay scheduler. All coordinates handed to the submenu
// controller are in panel space, whose origin is the monitor corner the panel
// is anchored to.
package display
