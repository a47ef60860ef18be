package deepgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

// Config controls the Deepgram live websocket engine.
type Config struct {
	APIKey     string
	APIBaseURL string
	Model      string

	Audio     ports.AudioConfig
	ChunkSize int
}

// Engine implements ports.RecognitionEngine against the Deepgram live API.
// It owns microphone capture: Listen starts an audio session and pumps PCM
// into the websocket until the session ends.
type Engine struct {
	cfg     Config
	capture ports.AudioCapture
	log     *slog.Logger

	mu       sync.Mutex
	onStatus ports.StatusHandler
	onError  ports.ErrorHandler
	current  *liveSession
}

func NewEngine(cfg Config, capture ports.AudioCapture, logger *slog.Logger) *Engine {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		capture: capture,
		log:     logger.With("component", "deepgram"),
	}
}

// Initialize registers the lifecycle callbacks and validates configuration.
func (e *Engine) Initialize(_ context.Context, onStatus ports.StatusHandler, onError ports.ErrorHandler) (bool, error) {
	if strings.TrimSpace(e.cfg.APIKey) == "" {
		return false, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	e.mu.Lock()
	e.onStatus = onStatus
	e.onError = onError
	e.mu.Unlock()
	return true, nil
}

// Listen opens a live websocket session and starts streaming microphone
// audio into it. Any previously active session is superseded.
func (e *Engine) Listen(ctx context.Context, opts ports.ListenOptions) error {
	e.mu.Lock()
	onStatus := e.onStatus
	onError := e.onError
	previous := e.current
	e.current = nil
	e.mu.Unlock()

	if onStatus == nil {
		return errors.New("engine is not initialized")
	}
	if previous != nil {
		previous.supersede()
	}

	wsURL, err := listenURL(e.cfg, opts)
	if err != nil {
		return err
	}

	var sessionCtx context.Context
	var cancel context.CancelFunc
	if opts.MaxDuration > 0 {
		sessionCtx, cancel = context.WithTimeout(ctx, opts.MaxDuration)
	} else {
		sessionCtx, cancel = context.WithCancel(ctx)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+e.cfg.APIKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(sessionCtx, wsURL, headers)
	if err != nil {
		cancel()
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			// Rejected credentials will not recover on retry.
			onError(domain.EngineError{
				Message:   fmt.Sprintf("deepgram rejected the API key (HTTP %d)", resp.StatusCode),
				Permanent: true,
			})
		}
		return fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	audioSession, err := e.capture.Start(sessionCtx, e.cfg.Audio)
	if err != nil {
		_ = conn.Close()
		cancel()
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	session := &liveSession{
		conn:          conn,
		audio:         audioSession,
		cancel:        cancel,
		cb:            callbacks{onResult: opts.OnResult, onLevel: opts.OnSoundLevel, onStatus: onStatus, onError: onError},
		chunkSize:     e.cfg.ChunkSize,
		cancelOnError: opts.CancelOnError,
		log:           e.log,
	}

	e.mu.Lock()
	e.current = session
	e.mu.Unlock()

	e.log.Info("listening session opened", "model", e.cfg.Model, "locale", opts.LocaleID)
	session.run(sessionCtx)
	onStatus(domain.StatusListening)
	return nil
}

// Stop ends the active session gracefully, letting the service flush its
// final result first. Safe to call when nothing is listening.
func (e *Engine) Stop(_ context.Context) error {
	if s := e.active(); s != nil {
		s.stop()
	}
	return nil
}

// Cancel tears the active session down without waiting for final results.
func (e *Engine) Cancel(_ context.Context) error {
	if s := e.active(); s != nil {
		s.discard()
	}
	return nil
}

func (e *Engine) active() *liveSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// listenURL builds the live websocket URL. pauseTimeout maps to Deepgram's
// endpointing parameter; maxDuration is a session deadline, not a URL knob.
func listenURL(cfg Config, opts ports.ListenOptions) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	u, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	audio := cfg.Audio
	if audio.SampleRate <= 0 {
		audio.SampleRate = 16000
	}
	if audio.Channels <= 0 {
		audio.Channels = 1
	}

	query := u.Query()
	query.Set("model", cfg.Model)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", strconv.Itoa(audio.SampleRate))
	query.Set("channels", strconv.Itoa(audio.Channels))
	query.Set("interim_results", strconv.FormatBool(opts.PartialResults))
	query.Set("smart_format", strconv.FormatBool(opts.AutoPunctuation))
	if opts.LocaleID != "" {
		query.Set("language", opts.LocaleID)
	}
	if opts.PauseTimeout > 0 {
		query.Set("endpointing", strconv.FormatInt(opts.PauseTimeout.Milliseconds(), 10))
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
