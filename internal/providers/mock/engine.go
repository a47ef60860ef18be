// Package mock provides a scripted recognition engine for offline runs and
// wiring tests. It replays canned hypotheses as though a user were speaking.
package mock

import (
	"context"
	"errors"
	"sync"
	"time"

	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

// Step is one scripted engine emission.
type Step struct {
	Text  string
	Final bool
	Level float64
	Delay time.Duration
}

// DefaultScript simulates a short dictation with the partial/final rhythm of
// a real streaming recognizer, including a duplicate final resend.
func DefaultScript() []Step {
	return []Step{
		{Text: "the", Level: 0.3, Delay: 150 * time.Millisecond},
		{Text: "the quick", Level: 0.5, Delay: 150 * time.Millisecond},
		{Text: "the quick brown fox", Level: 0.6, Delay: 200 * time.Millisecond},
		{Text: "The quick brown fox.", Final: true, Level: 0.2, Delay: 250 * time.Millisecond},
		{Text: "The quick brown fox.", Final: true, Delay: 50 * time.Millisecond},
	}
}

// Engine replays a script on every Listen call.
type Engine struct {
	script  []Step
	locales []domain.Locale
	system  domain.Locale

	mu       sync.Mutex
	onStatus ports.StatusHandler
	onError  ports.ErrorHandler
	cancel   context.CancelFunc
}

func NewEngine(script []Step) *Engine {
	return &Engine{
		script: script,
		locales: []domain.Locale{
			{ID: "en-US", Name: "English (United States)"},
			{ID: "nl", Name: "Dutch"},
		},
		system: domain.Locale{ID: "en-US", Name: "English (United States)"},
	}
}

func (e *Engine) Initialize(_ context.Context, onStatus ports.StatusHandler, onError ports.ErrorHandler) (bool, error) {
	e.mu.Lock()
	e.onStatus = onStatus
	e.onError = onError
	e.mu.Unlock()
	return true, nil
}

func (e *Engine) Listen(ctx context.Context, opts ports.ListenOptions) error {
	e.mu.Lock()
	onStatus := e.onStatus
	if onStatus == nil {
		e.mu.Unlock()
		return errors.New("engine is not initialized")
	}
	if e.cancel != nil {
		e.cancel()
	}
	var replayCtx context.Context
	var cancel context.CancelFunc
	if opts.MaxDuration > 0 {
		replayCtx, cancel = context.WithTimeout(ctx, opts.MaxDuration)
	} else {
		replayCtx, cancel = context.WithCancel(ctx)
	}
	e.cancel = cancel
	e.mu.Unlock()

	onStatus(domain.StatusListening)
	go e.replay(replayCtx, opts)
	return nil
}

func (e *Engine) replay(ctx context.Context, opts ports.ListenOptions) {
	e.mu.Lock()
	onStatus := e.onStatus
	e.mu.Unlock()

	sawText := false
	for _, step := range e.script {
		select {
		case <-ctx.Done():
			onStatus(domain.StatusNotListening)
			return
		case <-time.After(step.Delay):
		}

		if opts.OnSoundLevel != nil && step.Level > 0 {
			opts.OnSoundLevel(step.Level)
		}
		if opts.OnResult != nil {
			opts.OnResult(step.Text, step.Final)
		}
		if step.Text != "" {
			sawText = true
		}
	}

	if sawText {
		onStatus(domain.StatusDone)
	} else {
		onStatus(domain.StatusDoneNoResult)
	}
}

func (e *Engine) Stop(_ context.Context) error {
	e.stopReplay()
	return nil
}

func (e *Engine) Cancel(_ context.Context) error {
	e.stopReplay()
	return nil
}

func (e *Engine) stopReplay() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *Engine) Locales(_ context.Context) ([]domain.Locale, error) {
	out := make([]domain.Locale, len(e.locales))
	copy(out, e.locales)
	return out, nil
}

func (e *Engine) SystemLocale(_ context.Context) (domain.Locale, error) {
	return e.system, nil
}
