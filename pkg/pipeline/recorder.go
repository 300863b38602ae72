package pipeline

import (
	"sync"
	"time"

	"github.com/archivelab/scriptorium/pkg/document"
)

type EventKind string

const (
	EventStage    EventKind = "stage"
	EventRetry    EventKind = "retry"
	EventWarning  EventKind = "warning"
	EventTerminal EventKind = "terminal"
	EventCleanup  EventKind = "cleanup"
)

type Event struct {
	Time time.Time

	Key  document.Key
	Kind EventKind

	Detail string
}

// Recorder is the run-scoped event log shared by all workers. Append
// only, safe for concurrent use; there is no global run state.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(key document.Key, kind EventKind, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{
		Time: time.Now(),

		Key:  key,
		Kind: kind,

		Detail: detail,
	})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Event, len(r.events))
	copy(events, r.events)

	return events
}
