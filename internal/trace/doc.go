// Package trace provides the structured tracing used across statescan.
//
// Tracers travel through the call graph inside a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeScan, "scan", parentID)
//	defer span.End("")
//
// # Implementations
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes every event immediately (file/stderr)
//   - RingTracer: keeps the last N events in memory for post-mortem dumps
//   - MultiTracer: fans events out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only error points
//   - LevelPhase: driver and per-file boundaries
//   - LevelDetail: scanner runs
//   - LevelDebug: everything, including every emitted token
//
// # Scopes
//
//   - ScopeDriver: CLI commands
//   - ScopeFile: one input file
//   - ScopeScan: one scanner engine run
//   - ScopeStep: individual transitions and emissions
package trace
