package pipeline

import "context"

// State is a step of the generation pipeline. States advance strictly in
// declaration order; Failed may follow any of them.
type State int

const (
	StateFetching State = iota
	StateAnalyzing
	StateChartEnriching
	StateAssembling
	StateRendering
	StatePersisting
	StateNotified
	StateFailed
)

var stateNames = [...]string{
	StateFetching:       "Fetching",
	StateAnalyzing:      "Analyzing",
	StateChartEnriching: "ChartEnriching",
	StateAssembling:     "Assembling",
	StateRendering:      "Rendering",
	StatePersisting:     "Persisting",
	StateNotified:       "Notified",
	StateFailed:         "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateNotified || s == StateFailed
}

// StateEvent describes one transition. Err is set only for StateFailed.
type StateEvent struct {
	RequestID string
	State     State
	Err       error
}

// StateHook observes transitions. It runs synchronously on the pipeline goroutine.
type StateHook func(context.Context, StateEvent)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStateHook registers a transition observer. Multiple hooks run in
// registration order.
func WithStateHook(h StateHook) Option {
	return func(o *Orchestrator) {
		if h == nil {
			return
		}
		prev := o.hook
		if prev == nil {
			o.hook = h
			return
		}
		o.hook = func(ctx context.Context, ev StateEvent) {
			prev(ctx, ev)
			h(ctx, ev)
		}
	}
}
