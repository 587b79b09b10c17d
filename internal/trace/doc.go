// Package trace records what the bridge and its workers are doing.
//
// A Tracer receives Events. The bridge starts a Task per submission, records
// every lifecycle state it enters and hands the Task to the worker through
// the context, where driver code opens Phase spans:
//
//	tt := trace.StartTask(tracer, id, "src/a.js")
//	ctx = trace.WithTask(ctx, tt)
//	p := trace.TaskFrom(ctx).Phase("execute")
//	defer p.End("")
//
// LevelTask keeps task lifecycles and heartbeats, LevelPhase adds phases.
// Stream writes events as they happen; Ring keeps the last N and writes them
// out on Close. A Heartbeat periodically samples the bridge Load.
package trace
