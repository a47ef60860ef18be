package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

// Config controls the listening behavior handed to the recognition engine.
type Config struct {
	MaxDuration     time.Duration
	PauseTimeout    time.Duration
	AutoPunctuation bool
}

// Controller serializes recognition engine lifecycle transitions and feeds
// the transcript accumulator from engine callbacks. It owns no timers;
// session duration and pause timeouts are configuration passed through to
// the engine.
type Controller struct {
	engine ports.RecognitionEngine
	events ports.EventSink
	acc    *Accumulator
	cfg    Config

	mu           sync.Mutex
	ready        bool
	initializing bool
	starting     bool
	status       domain.RecognitionStatus
	lastError    string
	localeID     string
	soundLevel   float64
}

func NewController(engine ports.RecognitionEngine, events ports.EventSink, cfg Config) *Controller {
	return &Controller{
		engine: engine,
		events: events,
		acc:    NewAccumulator(),
		cfg:    cfg,
		status: domain.StatusIdle,
	}
}

// Initialize prepares the engine and resolves the recognition locale. It
// returns current readiness when already ready and false immediately when
// another initialization is in flight.
func (c *Controller) Initialize(ctx context.Context) bool {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return true
	}
	if c.initializing {
		c.mu.Unlock()
		return false
	}
	c.initializing = true
	c.status = domain.StatusInitializing
	c.mu.Unlock()
	c.events.StatusChanged(domain.StatusInitializing)

	ok, err := c.engine.Initialize(ctx, c.handleStatus, c.handleError)

	c.mu.Lock()
	c.initializing = false
	if err != nil || !ok {
		c.ready = false
		c.status = domain.StatusFailed
		if err != nil {
			c.lastError = fmt.Sprintf("speech recognition is unavailable: %v", err)
		} else {
			c.lastError = "speech recognition is unavailable on this system"
		}
		detail := c.lastError
		c.mu.Unlock()
		c.events.RecognitionError(domain.ErrorCodeInitialization, detail)
		c.events.StatusChanged(domain.StatusFailed)
		return false
	}
	c.ready = true
	c.status = domain.StatusReady
	c.mu.Unlock()

	c.resolveLocale(ctx)
	c.events.StatusChanged(domain.StatusReady)
	return true
}

// resolveLocale adopts the system-preferred locale only when the engine's
// catalog actually offers it; otherwise the locale stays empty and the
// engine default applies.
func (c *Controller) resolveLocale(ctx context.Context) {
	system, err := c.engine.SystemLocale(ctx)
	if err != nil || system.ID == "" {
		return
	}
	catalog, err := c.engine.Locales(ctx)
	if err != nil {
		return
	}
	for _, locale := range catalog {
		if locale.ID == system.ID {
			c.mu.Lock()
			c.localeID = system.ID
			c.mu.Unlock()
			return
		}
	}
}

// Start requests a new listening session. A concurrent Start or an in-flight
// Initialize makes the call return without side effects. Whatever session
// text was still pending is committed first, never dropped.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.starting || c.initializing {
		c.mu.Unlock()
		return
	}
	c.starting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	// A new start ends whatever session was previously open.
	c.acc.OnSessionEnded()
	c.events.DisplayTextChanged(c.acc.DisplayText())

	if !c.Initialize(ctx) {
		return
	}

	c.mu.Lock()
	c.status = domain.StatusStarting
	locale := c.localeID
	c.mu.Unlock()
	c.events.StatusChanged(domain.StatusStarting)

	err := c.engine.Listen(ctx, ports.ListenOptions{
		OnResult:        c.handleResult,
		OnSoundLevel:    c.handleSoundLevel,
		PartialResults:  true,
		CancelOnError:   true,
		Continuous:      true,
		AutoPunctuation: c.cfg.AutoPunctuation,
		LocaleID:        locale,
		MaxDuration:     c.cfg.MaxDuration,
		PauseTimeout:    c.cfg.PauseTimeout,
	})
	if err != nil {
		c.mu.Lock()
		c.lastError = fmt.Sprintf("could not start listening: %v", err)
		c.status = domain.StatusIdle
		detail := c.lastError
		c.mu.Unlock()
		c.events.RecognitionError(domain.ErrorCodeStart, detail)
		c.events.StatusChanged(domain.StatusIdle)
	}
	// The listening status itself arrives through the engine's status
	// callback once audio is flowing.
}

// Stop requests the engine to stop listening. Safe to call at any time.
func (c *Controller) Stop(ctx context.Context) {
	if err := c.engine.Stop(ctx); err != nil {
		c.mu.Lock()
		c.lastError = fmt.Sprintf("could not stop listening: %v", err)
		detail := c.lastError
		c.mu.Unlock()
		c.events.RecognitionError(domain.ErrorCodeEngine, detail)
	}
}

// Abort cancels the active session and discards its in-flight text instead
// of committing it. Committed text is untouched.
func (c *Controller) Abort(ctx context.Context) {
	c.acc.DiscardSession()
	if err := c.engine.Cancel(ctx); err != nil {
		c.mu.Lock()
		c.lastError = fmt.Sprintf("could not cancel listening: %v", err)
		detail := c.lastError
		c.mu.Unlock()
		c.events.RecognitionError(domain.ErrorCodeEngine, detail)
	}
	c.events.DisplayTextChanged(c.acc.DisplayText())
}

// Reset clears both transcript buffers and any surfaced error.
func (c *Controller) Reset() {
	c.acc.Reset()
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
	c.events.DisplayTextChanged(c.acc.DisplayText())
}

// Locales exposes the engine's locale catalog to the presentation layer.
func (c *Controller) Locales(ctx context.Context) ([]domain.Locale, error) {
	return c.engine.Locales(ctx)
}

func (c *Controller) handleResult(text string, final bool) {
	c.acc.OnResult(text, final)
	c.events.DisplayTextChanged(c.acc.DisplayText())
}

func (c *Controller) handleStatus(status domain.RecognitionStatus) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	if status.IsTerminal() {
		c.acc.OnSessionEnded()
		c.events.DisplayTextChanged(c.acc.DisplayText())
	}
	c.events.StatusChanged(status)
}

func (c *Controller) handleError(engineErr domain.EngineError) {
	c.mu.Lock()
	c.lastError = engineErr.Message
	if engineErr.Permanent {
		// The next Start must run initialization again.
		c.ready = false
	}
	c.mu.Unlock()
	c.events.RecognitionError(domain.ErrorCodeEngine, engineErr.Message)
}

func (c *Controller) handleSoundLevel(level float64) {
	c.mu.Lock()
	c.soundLevel = level
	c.mu.Unlock()
	c.events.SoundLevelChanged(level)
}

// DisplayText returns the derived transcript string.
func (c *Controller) DisplayText() string {
	return c.acc.DisplayText()
}

// Transcript returns a snapshot of the transcript buffers.
func (c *Controller) Transcript() domain.TranscriptState {
	return c.acc.Snapshot()
}

// Ready reports whether the engine finished initialization successfully.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Snapshot returns the full backend state for the UI.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	status := c.status
	lastError := c.lastError
	ready := c.ready
	localeID := c.localeID
	level := c.soundLevel
	c.mu.Unlock()

	return domain.Snapshot{
		DisplayText:  c.acc.DisplayText(),
		Status:       status,
		ErrorMessage: lastError,
		Ready:        ready,
		LocaleID:     localeID,
		SoundLevel:   level,
	}
}
