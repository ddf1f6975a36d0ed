package daemon

// State is the controller's view of the managed server, derived from
// the PID file and a liveness probe. It has two shapes: stopped
// (Running false, PID zero) and running (Running true, PID set).
type State struct {
	Running bool
	PID     int
}

// Classify turns a recorded PID and the outcome of its liveness probe
// into a State. Pure: the stale-file cleanup side effect lives in
// Controller.Inspect.
func Classify(pid int, alive bool) State {
	if pid > 0 && alive {
		return State{Running: true, PID: pid}
	}
	return State{}
}
