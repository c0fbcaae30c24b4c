// Package solver defines the capability surface a kinematics implementation
// exposes to the conformance harness: forward kinematics, the single-shot
// and search-based inverse queries, filtered search, and multi-solution
// enumeration. It also carries the typed errors solvers report and the
// factory registry through which plugins are constructed by name.
//
// Solvers signal failure exclusively through errors; a nil error means the
// returned data is a claimed success. The harness treats that claim as
// untrusted and verifies it independently.
package solver
