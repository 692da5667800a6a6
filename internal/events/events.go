// Package events carries pipeline progress from the core packages to
// whatever presentation layer is attached. Core code never prints.
package events

// Kind identifies what happened.
type Kind string

const (
	StageStarted   Kind = "stage_started"
	StageFinished  Kind = "stage_finished"
	StageSkipped   Kind = "stage_skipped"
	Warning        Kind = "warning"
	ToolSelected   Kind = "tool_selected"
	HostScanned    Kind = "host_scanned"
	SubdomainFound Kind = "subdomain_found"
	HostProbed     Kind = "host_probed"
	PathFound      Kind = "path_found"
	TargetsDerived Kind = "targets_derived"
)

// Event is a single progress notification. Fields that do not apply to a
// given Kind are left zero.
type Event struct {
	Kind    Kind
	Stage   string
	Target  string
	Message string
	Done    int
	Total   int
	Live    bool
	// Status is the HTTP status of a PathFound event.
	Status int
	Err    error
}

// Sink receives events. Implementations must tolerate concurrent calls:
// liveness probes and streamed tool output are reported from background
// goroutines.
type Sink func(Event)

// Emit delivers e when the sink is set.
func (s Sink) Emit(e Event) {
	if s != nil {
		s(e)
	}
}

// Warn is shorthand for a Warning event.
func (s Sink) Warn(stage, target string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.Emit(Event{Kind: Warning, Stage: stage, Target: target, Message: msg, Err: err})
}
