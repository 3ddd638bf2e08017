// Package runstate provides the interaction lock shared by every chance tool:
// a three-state run machine plus the single cancelable timer each tool owns.
package runstate

// State is the lifecycle stage of a tool's current run.
type State int

const (
	// Idle accepts a new run and every configuration change.
	Idle State = iota
	// Running rejects configuration changes and duplicate starts.
	Running
	// Settling shows the result during a short grace window; inputs stay locked.
	Settling
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Settling:
		return "settling"
	default:
		return "unknown"
	}
}

// Machine is the Idle -> Running -> Settling -> Idle state machine.
//
// Machine is not safe for concurrent use; the owning tool serialises access
// with the same lock that guards its Timer.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Accepting reports whether mutating actions are accepted (Idle only).
func (m *Machine) Accepting() bool { return m.state == Idle }

// Start moves Idle to Running.
//
// Postcondition: returns false and leaves the state unchanged unless it was Idle.
func (m *Machine) Start() bool {
	if m.state != Idle {
		return false
	}
	m.state = Running
	return true
}

// Finish moves Running to Settling when the animation completes.
func (m *Machine) Finish() bool {
	if m.state != Running {
		return false
	}
	m.state = Settling
	return true
}

// Settle moves Settling to Idle when the grace window expires.
func (m *Machine) Settle() bool {
	if m.state != Settling {
		return false
	}
	m.state = Idle
	return true
}

// CanReset reports whether a reset is permitted. Resetting mid-run is rejected.
func (m *Machine) CanReset() bool { return m.state == Idle }

// Abort forces the machine back to Idle. Used only on teardown after the
// owning Timer has been closed.
func (m *Machine) Abort() { m.state = Idle }
