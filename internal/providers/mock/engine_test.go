package mock

import (
	"context"
	"sync"
	"testing"
	"time"

	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

func TestEngineReplaysScript(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]Step{
		{Text: "hello", Level: 0.4, Delay: time.Millisecond},
		{Text: "hello world", Final: true, Delay: time.Millisecond},
	})

	rec := newRecorder()
	ok, err := engine.Initialize(context.Background(), rec.status, rec.err)
	if !ok || err != nil {
		t.Fatalf("initialize failed: ok=%v err=%v", ok, err)
	}

	if err := engine.Listen(context.Background(), ports.ListenOptions{
		OnResult:     rec.result,
		OnSoundLevel: rec.level,
	}); err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	rec.waitForStatus(t, domain.StatusDone, time.Second)

	results := rec.snapshotResults()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", results)
	}
	if results[0].text != "hello" || results[0].final {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].text != "hello world" || !results[1].final {
		t.Fatalf("unexpected final result: %+v", results[1])
	}
	if levels := rec.snapshotLevels(); len(levels) != 1 || levels[0] != 0.4 {
		t.Fatalf("unexpected levels: %v", levels)
	}
}

func TestEngineListenRequiresInitialization(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultScript())
	if err := engine.Listen(context.Background(), ports.ListenOptions{}); err == nil {
		t.Fatalf("expected uninitialized listen to fail")
	}
}

func TestEngineStopInterruptsReplay(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]Step{
		{Text: "slow", Delay: 5 * time.Second},
	})

	rec := newRecorder()
	if ok, err := engine.Initialize(context.Background(), rec.status, rec.err); !ok || err != nil {
		t.Fatalf("initialize failed: ok=%v err=%v", ok, err)
	}
	if err := engine.Listen(context.Background(), ports.ListenOptions{OnResult: rec.result}); err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	if err := engine.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	rec.waitForStatus(t, domain.StatusNotListening, time.Second)

	if results := rec.snapshotResults(); len(results) != 0 {
		t.Fatalf("expected no results after early stop, got %v", results)
	}
}

func TestEngineLocales(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	locales, err := engine.Locales(context.Background())
	if err != nil || len(locales) == 0 {
		t.Fatalf("unexpected catalog: %v err=%v", locales, err)
	}
	system, err := engine.SystemLocale(context.Background())
	if err != nil || system.ID != "en-US" {
		t.Fatalf("unexpected system locale: %+v err=%v", system, err)
	}
}

type recordedResult struct {
	text  string
	final bool
}

type recorder struct {
	mu       sync.Mutex
	results  []recordedResult
	statuses []domain.RecognitionStatus
	levels   []float64
	errs     []domain.EngineError
	changed  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{changed: make(chan struct{}, 64)}
}

func (r *recorder) result(text string, final bool) {
	r.mu.Lock()
	r.results = append(r.results, recordedResult{text: text, final: final})
	r.mu.Unlock()
	r.notify()
}

func (r *recorder) status(status domain.RecognitionStatus) {
	r.mu.Lock()
	r.statuses = append(r.statuses, status)
	r.mu.Unlock()
	r.notify()
}

func (r *recorder) level(level float64) {
	r.mu.Lock()
	r.levels = append(r.levels, level)
	r.mu.Unlock()
	r.notify()
}

func (r *recorder) err(e domain.EngineError) {
	r.mu.Lock()
	r.errs = append(r.errs, e)
	r.mu.Unlock()
	r.notify()
}

func (r *recorder) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *recorder) waitForStatus(t *testing.T, want domain.RecognitionStatus, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		r.mu.Lock()
		for _, status := range r.statuses {
			if status == want {
				r.mu.Unlock()
				return
			}
		}
		r.mu.Unlock()

		select {
		case <-r.changed:
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		}
	}
}

func (r *recorder) snapshotResults() []recordedResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *recorder) snapshotLevels() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.levels))
	copy(out, r.levels)
	return out
}
