package pipeline

import "context"

// EventKind tags a progress event.
type EventKind int

const (
	// EventProgress reports Current out of Total units done.
	EventProgress EventKind = iota
	// EventCompleted carries the final output path. Always the last event on
	// a successful run.
	EventCompleted
	// EventFailed carries the error that aborted the run. Always the last
	// event on a failed run.
	EventFailed
)

// Event is one element of the progress stream.
type Event struct {
	Kind       EventKind
	Current    int
	Total      int
	OutputPath string
	Err        error
}

// Stream is the finite, non-restartable event sequence for one run. The
// channel closes after the Completed or Failed event; nothing follows it.
type Stream struct {
	events chan Event
	cancel context.CancelFunc
}

// Events returns the event channel.
func (s *Stream) Events() <-chan Event { return s.events }

// Cancel requests cooperative shutdown. The orchestrator checks for
// cancellation between stages; in-flight subprocess calls are not
// preemptively killed.
func (s *Stream) Cancel() { s.cancel() }
