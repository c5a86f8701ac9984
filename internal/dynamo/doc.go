// Package dynamo provides the shared primitives of the layout simulation.
//
// The package defines the small vocabulary every other package builds on:
//
//   - [Dimensions]: the fixed 2D or 3D width of a simulation
//   - vector helpers over gonum's [r3.Vec] ([Project], [IsFinite], [Clamp])
//   - [DirectionTable]: precomputed unit directions used as deterministic
//     fallbacks when two bodies share a location
//   - the domain errors ([ErrInvalidReference], [ErrMalformedImport],
//     [ErrInvalidConfiguration])
//   - [ParallelFor]: chunked data-parallel loops for the O(n²) force pass
//
// # Example
//
//	v := r3.Vec{X: 1, Y: 2, Z: 3}
//	flat := dynamo.Project(v, dynamo.TwoD) // {1, 2, 0}
//
// # Thread Safety
//
// Everything here is either immutable after construction or a pure function.
package dynamo
