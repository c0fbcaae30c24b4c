// Package spatial defines the value types exchanged between the conformance
// harness and kinematics solvers: joint-space configurations and Cartesian
// poses, together with the tolerance predicates used by round-trip checks.
//
// All types are plain values with no shared mutable state. Comparisons are
// componentwise: a pose matches another pose when every one of its seven
// components (three position, four orientation) is within tolerance. This is
// deliberately not a metric on SO(3) - the harness validates that a solver
// reproduces the exact pose representation it emitted, so the quaternion
// double cover is resolved by canonical sign (see Quaternion.Canonical)
// rather than by comparing rotations.
package spatial
