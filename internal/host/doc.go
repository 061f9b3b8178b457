// Package host provides an in-memory stand-in for a rendering host: visual
// objects that implement view.Handle, a demo Panel lifecycle whose setup
// acquires asset bundles and runs timed stages, and a Scene that spawns and
// addresses views by ID.
package host
