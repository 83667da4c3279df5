// Package submenu drives the Recent Items popout: it opens after a hover
// delay, stays open while the pointer crosses the gap to the popout, and
// closes once a poll confirms the pointer has left both the trigger and the
// popout.
//
// The controller talks to the toolkit only through the interfaces in host.go,
// so every transition can be driven from tests with a manual loop.
package submenu
