// Package scoring decouples analysis work from the webhook reply path. The
// orchestrator enqueues jobs and never waits on them; a worker pool drains
// the queue and writes results back to storage.
package scoring

import "context"

const (
	// Stream is the Redis stream scoring jobs are appended to.
	Stream = "scoring:stream"
	// Group is the worker pool's consumer group on Stream.
	Group = "scoring-workers"

	JobScoreResponse     = "score_response"
	JobFinalizeInterview = "finalize_interview"
)

// Dispatcher submits fire-and-forget scoring work. Implementations must
// return quickly; a dispatch failure is the caller's to log, never to
// surface into the live call.
type Dispatcher interface {
	DispatchScoreResponse(ctx context.Context, responseID string) error
	DispatchFinalize(ctx context.Context, interviewID string) error
}

// EventChannel is the pub/sub channel scoring progress for one interview is
// published on; the live monitor subscribes to it.
func EventChannel(interviewID string) string {
	return "interview:" + interviewID + ":events"
}
