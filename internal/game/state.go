// Package game runs the simulated session: the tick loop, bot skirmishes,
// operator commands and the terminal dashboard.
package game

// State represents whether the simulation is advancing.
type State int

const (
	// StateRunning advances the clock and ticks the rules every frame.
	StateRunning State = iota
	// StatePaused freezes the clock; commands still apply.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
