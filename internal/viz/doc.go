// Package viz draws force-directed layouts in the terminal.
//
// [Model] is a Bubble Tea program that advances a simulation every frame and
// renders node positions on a braille [Canvas] through a [Camera]. 3D layouts
// get a perspective projection that can be rotated.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step
//	R     - Scatter nodes again
//	Tab   - Select parameter, Up/Down to scale it
//	2 / 3 - Switch dimensions
//	T     - Cycle color themes
//	G     - Toggle GIF capture
//	?     - Show help overlay
package viz
