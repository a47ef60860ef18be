package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Recognition engine selectors.
const (
	EngineDeepgram = "deepgram"
	EngineMock     = "mock"
)

// Config stores runtime configuration for the dictation backend.
type Config struct {
	Engine   string
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Session  SessionConfig
}

type DeepgramConfig struct {
	APIKey     string
	APIBaseURL string
	Model      string
	Punctuate  bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkSize       int
}

type SessionConfig struct {
	// MaxListen caps one listening session; PauseTimeout ends it after
	// trailing silence. Both are handed to the recognition engine.
	MaxListen    time.Duration
	PauseTimeout time.Duration
}

// Load resolves configuration from an optional YAML file and environment
// variables, environment winning over file, file over defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := defaults()

	path := strings.TrimSpace(os.Getenv("LIVESCRIBE_CONFIG"))
	if path == "" {
		path = filepath.Join(home, ".config", "livescribe", "config.yaml")
	}
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	clamp(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Engine: EngineDeepgram,
		Deepgram: DeepgramConfig{
			APIBaseURL: "https://api.deepgram.com/v1",
			Model:      "nova-2",
			Punctuate:  true,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
			ChunkSize:       4096,
		},
		Session: SessionConfig{
			MaxListen:    60 * time.Second,
			PauseTimeout: 3 * time.Second,
		},
	}
}

// fileConfig mirrors the YAML layout; durations are plain integers so the
// file stays editable without duration-syntax knowledge.
type fileConfig struct {
	Engine   string `yaml:"engine"`
	Deepgram struct {
		APIKey     string `yaml:"apiKey"`
		APIBaseURL string `yaml:"apiBaseUrl"`
		Model      string `yaml:"model"`
		Punctuate  *bool  `yaml:"punctuate"`
	} `yaml:"deepgram"`
	Audio struct {
		RecorderCommand string `yaml:"recorderCommand"`
		InputFormat     string `yaml:"inputFormat"`
		InputDevice     string `yaml:"inputDevice"`
		SampleRate      int    `yaml:"sampleRate"`
		Channels        int    `yaml:"channels"`
		ChunkSize       int    `yaml:"chunkSize"`
	} `yaml:"audio"`
	Session struct {
		MaxListenSeconds int `yaml:"maxListenSeconds"`
		PauseTimeoutMS   int `yaml:"pauseTimeoutMs"`
	} `yaml:"session"`
}

func applyFile(cfg *Config, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	setString(&cfg.Engine, file.Engine)
	setString(&cfg.Deepgram.APIKey, file.Deepgram.APIKey)
	setString(&cfg.Deepgram.APIBaseURL, file.Deepgram.APIBaseURL)
	setString(&cfg.Deepgram.Model, file.Deepgram.Model)
	if file.Deepgram.Punctuate != nil {
		cfg.Deepgram.Punctuate = *file.Deepgram.Punctuate
	}
	setString(&cfg.Audio.RecorderCommand, file.Audio.RecorderCommand)
	setString(&cfg.Audio.InputFormat, file.Audio.InputFormat)
	setString(&cfg.Audio.InputDevice, file.Audio.InputDevice)
	setInt(&cfg.Audio.SampleRate, file.Audio.SampleRate)
	setInt(&cfg.Audio.Channels, file.Audio.Channels)
	setInt(&cfg.Audio.ChunkSize, file.Audio.ChunkSize)
	if file.Session.MaxListenSeconds > 0 {
		cfg.Session.MaxListen = time.Duration(file.Session.MaxListenSeconds) * time.Second
	}
	if file.Session.PauseTimeoutMS > 0 {
		cfg.Session.PauseTimeout = time.Duration(file.Session.PauseTimeoutMS) * time.Millisecond
	}
	return nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.Engine, "LIVESCRIBE_ENGINE")
	overrideString(&cfg.Deepgram.APIKey, "DEEPGRAM_API_KEY")
	overrideString(&cfg.Deepgram.APIBaseURL, "DEEPGRAM_API_BASE")
	overrideString(&cfg.Deepgram.Model, "DEEPGRAM_MODEL")
	overrideBool(&cfg.Deepgram.Punctuate, "DEEPGRAM_PUNCTUATE")
	overrideString(&cfg.Audio.RecorderCommand, "LIVESCRIBE_FFMPEG_COMMAND")
	overrideString(&cfg.Audio.InputFormat, "LIVESCRIBE_AUDIO_INPUT_FORMAT")
	overrideString(&cfg.Audio.InputDevice, "LIVESCRIBE_AUDIO_INPUT_DEVICE")
	overrideInt(&cfg.Audio.SampleRate, "LIVESCRIBE_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "LIVESCRIBE_CHANNELS")
	overrideInt(&cfg.Audio.ChunkSize, "LIVESCRIBE_AUDIO_CHUNK_SIZE")
	if seconds, ok := lookupInt("LIVESCRIBE_MAX_LISTEN_SECONDS"); ok && seconds >= 0 {
		cfg.Session.MaxListen = time.Duration(seconds) * time.Second
	}
	if ms, ok := lookupInt("LIVESCRIBE_PAUSE_TIMEOUT_MS"); ok && ms >= 0 {
		cfg.Session.PauseTimeout = time.Duration(ms) * time.Millisecond
	}
}

func clamp(cfg *Config) {
	if cfg.Engine != EngineMock {
		cfg.Engine = EngineDeepgram
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func setInt(dst *int, value int) {
	if value > 0 {
		*dst = value
	}
}

func overrideString(dst *string, key string) {
	setString(dst, os.Getenv(key))
}

func overrideInt(dst *int, key string) {
	if value, ok := lookupInt(key); ok {
		setInt(dst, value)
	}
}

func overrideBool(dst *bool, key string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}

func lookupInt(key string) (int, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
