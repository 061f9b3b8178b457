// Package view implements the lifecycle controller for one visual unit.
//
// A View moves through four observable states:
//
//	Unloaded -> Loading -> ActiveHidden <-> ActiveVisible
//	    ^                        |               |
//	    +------------ Unload ----+---------------+
//
// Load runs the view's Setup, which may block, and activates the view. Show
// and Hide toggle the host's visual object and fire the persistent show and
// hide events. A non-instant Hide fires its event first and keeps the object
// visible for the hide delay so the host can animate it out. Unload clears
// every listener registered through AddListener, runs Cleanup and either
// destroys the visual object or leaves it hidden for reuse.
//
// Every continuation that runs after Setup or the hide timer is checked
// against a generation token, so an Unload always wins over work that was
// in flight when it happened.
package view
