package tutor

// State is the lifecycle state of a tutoring session. Exactly one state is
// live at a time; it is session-scoped and never persisted.
type State int

const (
	// StateEmpty means no paper has been uploaded yet.
	StateEmpty State = iota
	// StateExtracting means an upload is being converted to text.
	StateExtracting
	// StateReady means a paper is loaded and the session answers turns.
	StateReady
	// StateExtractionFailed means the last upload could not be converted.
	// A new upload is accepted from here.
	StateExtractionFailed
	// StateInitFailed means the backend session could not be constructed.
	// The paper text is retained; initialization can be retried.
	StateInitFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateExtracting:
		return "extracting"
	case StateReady:
		return "ready"
	case StateExtractionFailed:
		return "extraction_failed"
	case StateInitFailed:
		return "init_failed"
	default:
		return "unknown"
	}
}
