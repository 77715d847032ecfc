package plugin

// State is a plugin's lifecycle state.
type State int

const (
	// StateUnloaded means no Lua state exists for the plugin.
	StateUnloaded State = iota

	// StateLoaded means the entry file ran but activation has not happened.
	StateLoaded

	// StateActive means setup and activate completed.
	StateActive

	// StateFailed means loading or activation failed; Error() has details.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
