// Package toolstest provides a scripted tools.Executor for component tests.
package toolstest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/tools"
)

// Call records one invocation seen by the fake.
type Call struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Responder produces the result for an invocation.
type Responder func(name string, args []string) tools.CommandResult

// Executor is a tools.Executor whose results come from a Responder.
// Streaming calls replay the scripted output line by line.
type Executor struct {
	Respond Responder

	mu    sync.Mutex
	calls []Call
}

// New returns an Executor answering with respond.
func New(respond Responder) *Executor {
	return &Executor{Respond: respond}
}

// Static answers every call with the same result.
func Static(res tools.CommandResult) *Executor {
	return New(func(string, []string) tools.CommandResult { return res })
}

// Run implements tools.Executor.
func (e *Executor) Run(ctx context.Context, name string, args []string, timeout time.Duration) tools.CommandResult {
	e.record(name, args, timeout)
	if ctx.Err() != nil {
		return tools.CommandResult{ExitCode: tools.ExitUnavailable}
	}
	return e.Respond(name, args)
}

// RunStreaming implements tools.Executor.
func (e *Executor) RunStreaming(ctx context.Context, name string, args []string, timeout time.Duration, onLine func(string)) tools.CommandResult {
	res := e.Run(ctx, name, args, timeout)
	if onLine != nil {
		for _, line := range strings.Split(res.Output, "\n") {
			line = strings.TrimRight(line, " \t\r")
			if line != "" {
				onLine(line)
			}
		}
	}
	return res
}

// Calls returns a copy of the recorded invocations.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

func (e *Executor) record(name string, args []string, timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Name: name, Args: append([]string(nil), args...), Timeout: timeout})
}

// Available returns a LookupFunc that resolves only the listed tools, to
// "/fake/bin/<name>".
func Available(names ...string) tools.LookupFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) (string, bool) {
		if set[name] {
			return "/fake/bin/" + name, true
		}
		return "", false
	}
}

// Recorder collects events for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Sink returns an events.Sink appending to the recorder.
func (r *Recorder) Sink() events.Sink {
	return func(e events.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	}
}

// Of returns the recorded events of the given kind, in arrival order.
func (r *Recorder) Of(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
