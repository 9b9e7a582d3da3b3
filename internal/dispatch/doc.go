// Package dispatch runs the per-channel generate-and-deliver pipeline.
//
// A run takes an ordered list of Tasks (channel id + prompt), asks the
// Generator for content, hands the result to the Sender, and records exactly
// one Outcome per task into a Report. Failures are isolated per task: a
// channel that cannot be generated for or delivered to is recorded as a
// Failure and the run continues.
//
// Delivery semantics
//
// The dispatcher is best-effort and strictly sequential. The Report preserves
// input order, so callers can correlate outcomes with their task list by
// position.
package dispatch
