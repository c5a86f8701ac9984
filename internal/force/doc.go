// Package force implements the closed set of forces used by the layout engine.
//
// A [Frame] is a dense, read-only snapshot of the bodies: positions,
// velocities, pinned flags and edge pairs. Every [Kind] maps a Frame and the
// shared [Params] to one force vector per body; the [Model] sums the kinds in
// canonical order:
//
//   - [Repulsion]: inverse-square push between every pair of bodies
//   - [Attraction]: spring pull along every edge, parallel edges add up
//   - [Centering]: linear pull toward the origin or the centroid
//   - [Damping]: drag proportional to velocity
//
// Forces on pinned bodies are computed like any other; discarding them is the
// integrator's job.
//
// When two bodies share a location the direction between them is undefined.
// The model then uses a fallback direction picked from OpenSimplex noise
// sampled at the pair's indices, so results stay finite and reproducible.
package force
