// Package conformance implements the FK->IK->FK round-trip protocol for
// validating kinematics solvers.
//
// A run starts with a one-shot metadata check, then executes scenario
// batches. Each trial samples a random configuration, computes its pose
// through the solver's own forward kinematics, asks the solver to invert
// that pose, and verifies that the returned configuration maps back onto
// the target within tolerance on all seven pose components.
//
// Failures fall into three classes. Setup failures (metadata mismatch,
// joint-ordering mismatch) abort the run. Per-trial solver failures are
// tallied; a scenario is accepted when strictly more than the configured
// fraction of attempted trials succeed. Validator inconsistencies, where
// the solver claimed success but the claim does not verify, are always
// surfaced and any occurrence rejects the scenario regardless of rate.
//
// Trials whose inputs could not be generated (forward kinematics failed on
// the sampled configuration, or the sampled pose is out of scope for the
// scenario) land in a separate bucket and join neither the numerator nor
// the denominator of the success rate.
//
// The trial loop is strictly sequential: solvers are not assumed
// reentrant, and search timing stays honest.
package conformance
