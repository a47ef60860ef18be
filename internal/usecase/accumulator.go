package usecase

import (
	"strings"
	"sync"

	"livescribe/internal/domain"
	"livescribe/internal/normalize"
)

// Accumulator owns the committed transcript and the in-flight session text.
// Exactly one of the two buffers is touched by live recognition events at a
// time: results overwrite the session buffer, and a commit folds it into the
// committed buffer.
type Accumulator struct {
	mu        sync.Mutex
	committed string
	session   string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// OnResult records the latest hypothesis for the active session. Each result
// replaces the previous one; a final result ends the session immediately.
// Empty text is valid and clears the visible in-flight fragment.
func (a *Accumulator) OnResult(text string, final bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = strings.TrimSpace(text)
	if final {
		a.commitLocked()
	}
}

// OnSessionEnded folds any pending session text into the committed
// transcript. Called on terminal engine statuses even when no final result
// arrived; calling it with an empty session is a no-op.
func (a *Accumulator) OnSessionEnded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitLocked()
}

func (a *Accumulator) commitLocked() {
	session := strings.TrimSpace(a.session)
	a.session = ""
	if session == "" {
		return
	}
	if a.committed == "" {
		a.committed = session
		return
	}
	// Engines often resend a final result that duplicates the last partial
	// already folded in; a normalized suffix match spots that resend. The
	// check is deliberately suffix-only, not a general overlap diff.
	if normalize.EndsWith(a.committed, session) {
		return
	}
	a.committed = a.committed + " " + session
}

// DiscardSession drops the in-flight session text without committing it.
// Used when the user explicitly aborts a session.
func (a *Accumulator) DiscardSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = ""
}

// Reset clears both buffers.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.committed = ""
	a.session = ""
}

// Snapshot returns a copy of both buffers.
func (a *Accumulator) Snapshot() domain.TranscriptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.TranscriptState{Committed: a.committed, Session: a.session}
}

// DisplayText derives the single string shown to the user: committed and
// session text joined by one space, or the placeholder when both are empty.
func (a *Accumulator) DisplayText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.committed == "" && a.session == "":
		return domain.DisplayPlaceholder
	case a.committed == "":
		return a.session
	case a.session == "":
		return a.committed
	default:
		return a.committed + " " + a.session
	}
}
