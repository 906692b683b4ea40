// Package sim provides the deterministic digital twin of the casting
// and machining line.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - machine.go: the machine state machine (IDLE/RUNNING/STOPPED/FAULTED),
//     edge-triggered commands, and the device interface concrete machines plug into
//   - engine.go: the fixed-timestep tick loop, run-predicate gating, and tag aggregation
//   - orchestrator.go: pull-based material flow, the WIP ledger, and batch lifecycle
//
// # Architecture
//
// The sim package owns the tick loop and the machine framework;
// supporting concerns live in sub-packages:
//   - sim/physics/: the four stateful process models (furnace, cooling, LPDC, CNC)
//   - sim/flow/: the synchronous event dispatcher and the event-sourced audit view
//   - sim/telemetry/: Prometheus collectors fed from engine snapshots
//
// One Step runs the orchestrator, then every machine in registration
// order, then advances the clock. Nothing in the core blocks or spawns
// goroutines; the only locked structure is the TagStore boundary that
// external readers poll.
//
// # Determinism
//
// Runs are reproducible by construction: a fixed timestep, a fixed tick
// order, and a PartitionedRNG that derives one ordered stream per
// stochastic subsystem (orchestrator gates, flow yield draws, inspection
// rejects) from a single master seed. Two runs with the same seed,
// configuration, and command sequence produce bit-identical tag
// histories.
package sim
