package deepgram

import (
	"context"
	"strings"
	"testing"
	"time"

	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

func TestNewEngineDefaults(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	if e.cfg.APIBaseURL != "https://api.deepgram.com/v1" {
		t.Fatalf("unexpected base url: %q", e.cfg.APIBaseURL)
	}
	if e.cfg.Model != "nova-2" {
		t.Fatalf("unexpected model: %q", e.cfg.Model)
	}
	if e.cfg.ChunkSize != 4096 {
		t.Fatalf("unexpected chunk size: %d", e.cfg.ChunkSize)
	}
}

func TestInitializeRequiresAPIKey(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	ok, err := e.Initialize(context.Background(), func(domain.RecognitionStatus) {}, func(domain.EngineError) {})
	if ok || err == nil {
		t.Fatalf("expected missing key failure, got ok=%v err=%v", ok, err)
	}
}

func TestListenRequiresInitialization(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{APIKey: "key"}, nil, nil)
	if err := e.Listen(context.Background(), ports.ListenOptions{}); err == nil {
		t.Fatalf("expected uninitialized listen to fail")
	}
}

func TestListenURL(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIBaseURL: "https://api.deepgram.com/v1",
		Model:      "nova-2",
		Audio:      ports.AudioConfig{SampleRate: 16000, Channels: 1},
	}
	u, err := listenURL(cfg, ports.ListenOptions{
		PartialResults:  true,
		AutoPunctuation: true,
		LocaleID:        "en-US",
		PauseTimeout:    3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"wss://api.deepgram.com/v1/listen",
		"encoding=linear16",
		"sample_rate=16000",
		"channels=1",
		"interim_results=true",
		"smart_format=true",
		"language=en-US",
		"endpointing=3000",
	} {
		if !strings.Contains(u, want) {
			t.Fatalf("expected %q in url: %s", want, u)
		}
	}
}

func TestListenURLOmitsOptionalParameters(t *testing.T) {
	t.Parallel()

	u, err := listenURL(Config{APIBaseURL: "http://localhost:9090/v1", Model: "m"}, ports.ListenOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(u, "ws://localhost:9090/v1/listen") {
		t.Fatalf("unexpected url: %s", u)
	}
	if strings.Contains(u, "language=") || strings.Contains(u, "endpointing=") {
		t.Fatalf("expected optional params omitted: %s", u)
	}
}

func TestListenURLInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := listenURL(Config{APIBaseURL: ":// bad"}, ports.ListenOptions{}); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestListenResponseTranscript(t *testing.T) {
	t.Parallel()

	var r1 listenResponse
	r1.Channel.Alternatives = append(r1.Channel.Alternatives, struct {
		Transcript string "json:\"transcript\""
	}{Transcript: " channel "})
	if got := r1.transcript(); got != "channel" {
		t.Fatalf("unexpected transcript from channel shape: %q", got)
	}

	var r2 listenResponse
	r2.Results.Channels = append(r2.Results.Channels, struct {
		Alternatives []struct {
			Transcript string "json:\"transcript\""
		} "json:\"alternatives\""
	}{
		Alternatives: []struct {
			Transcript string "json:\"transcript\""
		}{{Transcript: "results"}},
	})
	if got := r2.transcript(); got != "results" {
		t.Fatalf("unexpected transcript from results shape: %q", got)
	}

	if got := (listenResponse{}).transcript(); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestSystemLocaleFromEnv(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"lang with encoding", map[string]string{"LANG": "en_US.UTF-8"}, "en-US"},
		{"lc_all wins", map[string]string{"LC_ALL": "fr_CA.UTF-8", "LANG": "en_US.UTF-8"}, "fr-CA"},
		{"modifier stripped", map[string]string{"LANG": "de_DE@euro"}, "de-DE"},
		{"posix is unset", map[string]string{"LANG": "POSIX"}, ""},
		{"c is unset", map[string]string{"LC_ALL": "C"}, ""},
		{"nothing set", map[string]string{}, ""},
		{"plain language", map[string]string{"LANG": "nl"}, "nl"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			locale := systemLocaleFromEnv(func(key string) string { return tc.env[key] })
			if locale.ID != tc.want {
				t.Fatalf("unexpected locale: %q, want %q", locale.ID, tc.want)
			}
		})
	}
}

func TestLocalesCatalogIncludesDefaults(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{APIKey: "key"}, nil, nil)
	locales, err := e.Locales(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawEnUS bool
	for _, locale := range locales {
		if locale.ID == "en-US" {
			sawEnUS = true
		}
		if locale.ID == "" || locale.Name == "" {
			t.Fatalf("catalog entry missing fields: %+v", locale)
		}
	}
	if !sawEnUS {
		t.Fatalf("expected en-US in catalog")
	}
}
