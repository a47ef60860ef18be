package ports

import (
	"context"
	"io"
	"time"

	"livescribe/internal/domain"
)

// ResultHandler receives a recognition hypothesis for the active session.
// Each call replaces the previous hypothesis; final marks the authoritative
// last result of the session.
type ResultHandler func(text string, final bool)

// StatusHandler receives engine lifecycle status changes.
type StatusHandler func(status domain.RecognitionStatus)

// ErrorHandler receives asynchronous engine errors.
type ErrorHandler func(err domain.EngineError)

// SoundLevelHandler receives microphone loudness updates in [0,1].
type SoundLevelHandler func(level float64)

// ListenOptions configures a single listening session.
type ListenOptions struct {
	OnResult     ResultHandler
	OnSoundLevel SoundLevelHandler

	PartialResults  bool
	CancelOnError   bool
	Continuous      bool
	AutoPunctuation bool

	// LocaleID selects the recognition language; empty means the engine's
	// own default.
	LocaleID string

	// MaxDuration caps one session; PauseTimeout ends it after trailing
	// silence. Both are enforced by the engine, not by the caller.
	MaxDuration  time.Duration
	PauseTimeout time.Duration
}

// RecognitionEngine abstracts the external speech recognizer.
type RecognitionEngine interface {
	Initialize(ctx context.Context, onStatus StatusHandler, onError ErrorHandler) (bool, error)
	Listen(ctx context.Context, opts ListenOptions) error
	Stop(ctx context.Context) error
	Cancel(ctx context.Context) error
	Locales(ctx context.Context) ([]domain.Locale, error)
	SystemLocale(ctx context.Context) (domain.Locale, error)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state changes to the UI.
type EventSink interface {
	DisplayTextChanged(text string)
	StatusChanged(status domain.RecognitionStatus)
	SoundLevelChanged(level float64)
	RecognitionError(code domain.ErrorCode, detail string)
}
