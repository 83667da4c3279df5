// Package launcher runs the actions behind menu entries: spawning commands,
// opening URIs, and talking to logind and AccountsService over D-Bus for the
// user's display name and session switching.
//
// Every action is fire-and-forget from the menu's point of view. Errors are
// returned to the caller, which logs them; nothing here retries.
package launcher
