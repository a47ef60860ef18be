package bootstrap

import (
	"log/slog"
	"os"

	"livescribe/internal/audio"
	"livescribe/internal/config"
	"livescribe/internal/ports"
	"livescribe/internal/providers/deepgram"
	"livescribe/internal/providers/mock"
	"livescribe/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.Controller
	Config     config.Config
}

// Build wires the backend dependencies for the current runtime.
func Build(events ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var engine ports.RecognitionEngine
	switch cfg.Engine {
	case config.EngineMock:
		engine = mock.NewEngine(mock.DefaultScript())
	default:
		engine = deepgram.NewEngine(deepgram.Config{
			APIKey:     cfg.Deepgram.APIKey,
			APIBaseURL: cfg.Deepgram.APIBaseURL,
			Model:      cfg.Deepgram.Model,
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize: cfg.Audio.ChunkSize,
		}, audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand), logger)
	}

	controller := usecase.NewController(engine, events, usecase.Config{
		MaxDuration:     cfg.Session.MaxListen,
		PauseTimeout:    cfg.Session.PauseTimeout,
		AutoPunctuation: cfg.Deepgram.Punctuate,
	})

	return Services{Controller: controller, Config: cfg}, nil
}
