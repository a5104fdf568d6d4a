package pipeline

// State is the orchestrator's current stage. Transitions run strictly
// forward through the stage list; Aborted is reachable from any non-terminal
// state.
type State int32

const (
	StateValidating State = iota
	StateEnumerating
	StatePreprocessing
	StateInterpolating
	StateEncoding
	StateFinalized
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateEnumerating:
		return "enumerating"
	case StatePreprocessing:
		return "preprocessing"
	case StateInterpolating:
		return "interpolating"
	case StateEncoding:
		return "encoding"
	case StateFinalized:
		return "finalized"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateAborted
}
