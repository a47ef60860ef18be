package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"livescribe/internal/bootstrap"
	"livescribe/internal/config"
	"livescribe/internal/domain"
	"livescribe/internal/usecase"
)

const (
	eventDisplay = "livescribe:display"
	eventStatus  = "livescribe:status"
	eventLevel   = "livescribe:level"
	eventError   = "livescribe:error"
)

// App is the Wails application root. It is the presentation-layer adapter:
// actions go down to the controller, state changes come back up as events.
type App struct {
	ctx context.Context

	controller *usecase.Controller
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.RecognitionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller

	// Warm up the engine so the first Start does not pay for it.
	go a.controller.Initialize(ctx)
}

// Start begins a new listening session.
func (a *App) Start() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	a.controller.Start(a.ctx)
	return a.controller.Snapshot(), nil
}

// Stop ends the active listening session; pending text is committed.
func (a *App) Stop() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	a.controller.Stop(a.ctx)
	return a.controller.Snapshot(), nil
}

// Abort cancels the active session and discards its in-flight text.
func (a *App) Abort() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	a.controller.Abort(a.ctx)
	return a.controller.Snapshot(), nil
}

// Reset clears the transcript and any surfaced error.
func (a *App) Reset() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	a.controller.Reset()
	return a.controller.Snapshot(), nil
}

// CopyTranscript puts the current display text on the system clipboard.
func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}

	text := a.controller.DisplayText()
	if text == domain.DisplayPlaceholder {
		return errors.New("nothing to copy yet")
	}
	if err := runtime.ClipboardSetText(a.ctx, text); err != nil {
		a.RecognitionError(domain.ErrorCodeClipboard, err.Error())
		return err
	}
	return nil
}

// GetSnapshot returns the current backend state.
func (a *App) GetSnapshot() domain.Snapshot {
	if a.controller == nil {
		snap := domain.Snapshot{DisplayText: domain.DisplayPlaceholder, Status: domain.StatusIdle}
		if a.bootErr != nil {
			snap.Status = domain.StatusFailed
			snap.ErrorMessage = a.bootErr.Error()
		}
		return snap
	}
	return a.controller.Snapshot()
}

// GetLocales returns the engine's recognition language catalog.
func (a *App) GetLocales() ([]domain.Locale, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.controller.Locales(a.ctx)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"engine":           a.cfg.Engine,
		"model":            a.cfg.Deepgram.Model,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"maxListen":        a.cfg.Session.MaxListen.String(),
		"pauseTimeout":     a.cfg.Session.PauseTimeout.String(),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// DisplayTextChanged emits the derived transcript to the frontend.
func (a *App) DisplayTextChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventDisplay, map[string]string{"text": text})
}

// StatusChanged emits recognition lifecycle updates to the frontend.
func (a *App) StatusChanged(status domain.RecognitionStatus) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, map[string]string{
		"status":  string(status),
		"message": statusMessage(status),
	})
}

// SoundLevelChanged emits microphone level updates to the frontend.
func (a *App) SoundLevelChanged(level float64) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventLevel, map[string]float64{"level": level})
}

// RecognitionError emits backend errors to the frontend.
func (a *App) RecognitionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func statusMessage(status domain.RecognitionStatus) string {
	switch status {
	case domain.StatusIdle:
		return "Idle"
	case domain.StatusInitializing:
		return "Preparing speech recognition..."
	case domain.StatusReady:
		return "Ready"
	case domain.StatusFailed:
		return "Speech recognition unavailable"
	case domain.StatusStarting:
		return "Starting..."
	case domain.StatusListening:
		return "Listening..."
	case domain.StatusDone:
		return "Session finished"
	case domain.StatusNotListening:
		return "Stopped listening"
	case domain.StatusDoneNoResult:
		return "Finished without hearing anything"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeInitialization:
		return "Could not prepare speech recognition"
	case domain.ErrorCodeStart:
		return "Could not start listening"
	case domain.ErrorCodeEngine:
		return "Recognition error"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
