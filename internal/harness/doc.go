// Package harness runs scripted editing sessions for conformance testing.
//
// A scenario is a YAML file listing session operations (fetch, edits, reset,
// copy, publish) with an optional expect clause per step, followed by
// assertions on the session journal and the final projections. The harness
// drives a real engine.Session: nothing is simulated except fetch latency,
// which is zero unless a step holds a fetch at the gate.
//
// # Held fetches
//
// start_fetch begins a fetch that waits until a later release step for the
// same source. Holding two fetches and releasing them in either order is how
// scenarios exercise the generation guard:
//
//	steps:
//	  - op: start_fetch
//	    source: a
//	  - op: start_fetch
//	    source: b
//	  - op: release
//	    source: b
//	    expect: {applied: true}
//	  - op: release
//	    source: a
//	    expect: {applied: false}
//
// # Determinism
//
// Each run uses a fresh in-memory journal, a fixed session ID and a manual
// wall clock, so the journal of a scenario is byte-identical across runs and
// can be compared against a golden file (see RunWithGolden).
package harness
