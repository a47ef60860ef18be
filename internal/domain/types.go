package domain

// RecognitionStatus mirrors the lifecycle states reported by the recognition
// engine. The backend consumes these, it does not invent its own.
type RecognitionStatus string

const (
	StatusIdle         RecognitionStatus = "idle"
	StatusInitializing RecognitionStatus = "initializing"
	StatusReady        RecognitionStatus = "ready"
	StatusFailed       RecognitionStatus = "failed"
	StatusStarting     RecognitionStatus = "starting"
	StatusListening    RecognitionStatus = "listening"
	StatusDone         RecognitionStatus = "done"
	StatusNotListening RecognitionStatus = "notListening"
	StatusDoneNoResult RecognitionStatus = "doneNoResult"
)

// IsTerminal reports whether the status ends the active listening session.
func (s RecognitionStatus) IsTerminal() bool {
	switch s {
	case StatusDone, StatusNotListening, StatusDoneNoResult:
		return true
	default:
		return false
	}
}

// ErrorCode identifies recoverable backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup        ErrorCode = "startup"
	ErrorCodeInitialization ErrorCode = "initialization_failure"
	ErrorCodeStart          ErrorCode = "start_failure"
	ErrorCodeEngine         ErrorCode = "engine_error"
	ErrorCodeClipboard      ErrorCode = "clipboard"
)

// EngineError is an asynchronous error event from the recognition engine.
// A permanent error requires re-initialization before the next listen.
type EngineError struct {
	Message   string `json:"message"`
	Permanent bool   `json:"permanent"`
}

// Locale identifies a recognition language offered by the engine.
type Locale struct {
	ID   string `json:"localeId"`
	Name string `json:"displayName"`
}

// TranscriptState is a snapshot of the two transcript buffers. Committed
// holds only text from sessions that have ended; Session holds the latest
// hypothesis of the currently active session.
type TranscriptState struct {
	Committed string `json:"committed"`
	Session   string `json:"session"`
}

// DisplayPlaceholder is shown while both transcript buffers are empty.
const DisplayPlaceholder = "Press Start and begin speaking"

// Snapshot summarizes the backend for the presentation layer.
type Snapshot struct {
	DisplayText  string            `json:"displayText"`
	Status       RecognitionStatus `json:"status"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Ready        bool              `json:"ready"`
	LocaleID     string            `json:"localeId"`
	SoundLevel   float64           `json:"soundLevel"`
}
