package usecase

import (
	"testing"

	"livescribe/internal/domain"
)

func TestAccumulatorPartialReplacesSessionText(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("cat", false)
	if got := acc.DisplayText(); got != "cat" {
		t.Fatalf("unexpected display: %q", got)
	}

	acc.OnResult("cat sat", false)
	if got := acc.DisplayText(); got != "cat sat" {
		t.Fatalf("expected replacement, got %q", got)
	}

	acc.OnResult("cat sat", true)
	state := acc.Snapshot()
	if state.Committed != "cat sat" || state.Session != "" {
		t.Fatalf("unexpected state after final: %+v", state)
	}
}

func TestAccumulatorCommitOnEmptySessionIsNoOp(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("hello world", true)
	acc.OnResult("   ", true)
	acc.OnSessionEnded()

	if got := acc.Snapshot().Committed; got != "hello world" {
		t.Fatalf("unexpected committed text: %q", got)
	}
}

func TestAccumulatorSuppressesDuplicateSuffix(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("hello world", true)
	acc.OnResult("world", true)

	if got := acc.Snapshot().Committed; got != "hello world" {
		t.Fatalf("expected suffix duplicate suppressed, got %q", got)
	}
}

func TestAccumulatorSuffixCheckIgnoresCaseAndPunctuation(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("Hello, world.", true)
	acc.OnResult("hello world", true)

	if got := acc.Snapshot().Committed; got != "Hello, world." {
		t.Fatalf("expected normalized duplicate suppressed, got %q", got)
	}
}

func TestAccumulatorAppendsNonOverlappingSession(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("hello", true)
	acc.OnResult("there friend", true)

	if got := acc.Snapshot().Committed; got != "hello there friend" {
		t.Fatalf("unexpected committed text: %q", got)
	}
}

func TestAccumulatorPreservesCasingAndPunctuation(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("Hi!", true)

	if got := acc.Snapshot().Committed; got != "Hi!" {
		t.Fatalf("expected original text preserved, got %q", got)
	}
}

func TestAccumulatorSessionEndedIsIdempotent(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("first session", false)
	acc.OnSessionEnded()

	before := acc.Snapshot()
	acc.OnSessionEnded()
	acc.OnSessionEnded()
	after := acc.Snapshot()

	if before != after {
		t.Fatalf("redundant session end changed state: %+v vs %+v", before, after)
	}
	if after.Committed != "first session" || after.Session != "" {
		t.Fatalf("unexpected state: %+v", after)
	}
}

func TestAccumulatorEmptyResultClearsSessionText(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("something", false)
	acc.OnResult("", false)

	state := acc.Snapshot()
	if state.Session != "" || state.Committed != "" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if got := acc.DisplayText(); got != domain.DisplayPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestAccumulatorDisplayTextJoinsBuffers(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("committed part", true)
	acc.OnResult("live part", false)

	if got := acc.DisplayText(); got != "committed part live part" {
		t.Fatalf("unexpected display: %q", got)
	}
}

func TestAccumulatorDiscardSessionKeepsCommittedText(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("keep this", true)
	acc.OnResult("unwanted", false)
	acc.DiscardSession()

	state := acc.Snapshot()
	if state.Committed != "keep this" || state.Session != "" {
		t.Fatalf("unexpected state after discard: %+v", state)
	}

	// A session end after a discard has nothing left to commit.
	acc.OnSessionEnded()
	if got := acc.Snapshot().Committed; got != "keep this" {
		t.Fatalf("unexpected committed text: %q", got)
	}
}

func TestAccumulatorReset(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.OnResult("some text", true)
	acc.OnResult("more", false)
	acc.Reset()

	state := acc.Snapshot()
	if state.Committed != "" || state.Session != "" {
		t.Fatalf("expected empty buffers, got %+v", state)
	}
	if got := acc.DisplayText(); got != domain.DisplayPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
}
