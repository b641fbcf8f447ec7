// Package sim provides the core simulation engine for tandem pipelines of
// finite-buffer service stages.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - duration.go: Duration, the non-negative time value (negative values panic)
//   - stage.go: the Stage and StageSpec interfaces and BlockedError
//   - service.go / handler.go: the Service stage state machine (Active/Blocked)
//     and the time-sliced service of buffered requests
//   - pipeline.go: PipelineBuilder and the arrival-driven Pipeline driver
//   - statistics.go: Statistics and its Merge/Scale algebra
//   - metrics_utils.go: latency percentiles of completed requests
//   - rng.go: per-subsystem random streams derived from one SimulationKey
//
// # Time model
//
// There is no event queue. The Pipeline samples an inter-arrival gap and
// pushes the new request into the head stage together with that gap as a
// time budget. Each Service spends the budget serving buffered requests and
// forwards every completed request downstream with the budget consumed
// since its previous emission. A stage that cannot forward a completed
// request becomes Blocked and drops new arrivals until it delivers it.
//
// # Sub-packages
//
//   - sim/workload/: duration samplers and the YAML scenario spec
//   - sim/graph/: metric-vs-horizon curves, replication averaging and the
//     sequential-sampling accuracy loop
//   - sim/trace/: admission trace records
package sim
