// Package physics provides the deterministic continuous-time models that
// back the plant's machines: a first-order thermal furnace, Newtonian
// cooling, pressure-driven low-pressure die casting (LPDC), and
// material-removal-rate CNC machining.
//
// Every model follows the same contract:
//   - Reset() restores startup defaults.
//   - Step(dt, inputs) is the only state-mutating entry point. The same
//     (state, dt, inputs) always yields the same outputs: no randomness,
//     no wall-clock reads, no mutation of anything outside the model.
//
// Out-of-range control inputs are clamped rather than rejected, so a
// malformed setpoint can never abort a tick. The clamping ranges are
// documented per model.
package physics

// Model is the shared contract for all physics models. Concrete models
// expose typed Step methods (the input/output shapes differ per process);
// Model covers the part of the contract the machine framework relies on.
type Model interface {
	// Reset restores the model to its startup defaults.
	Reset()
}
