package trigger

// Status is the outcome of one handler step. Handlers continue past
// non-fatal failures and stop at fatal ones; the report makes that decision
// visible to tests instead of leaving it implicit in control flow.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusFailed // non-fatal, handler continued
	StatusFatal  // handler stopped here
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusFatal:
		return "fatal"
	}
	return "unknown"
}

type Step struct {
	Name   string
	Status Status
	Err    error
}

// Report is the ordered list of steps a handler executed. Trigger
// invocations are fire-and-forget, so the report is consumed by tests and
// logging only.
type Report struct {
	Steps []Step
}

func (r *Report) Add(name string, status Status, err error) {
	r.Steps = append(r.Steps, Step{Name: name, Status: status, Err: err})
}

// Step returns the recorded step by name, or a zero Step with Status
// StatusSkipped semantics when the handler never reached it.
func (r *Report) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Fatal reports whether the handler aborted.
func (r *Report) Fatal() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFatal {
			return true
		}
	}
	return false
}
