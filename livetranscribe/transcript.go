package livetranscribe

import "sync"

// Transcript holds the accumulated output lines. The last line is live and
// may be rewritten while its phrase is still open; all earlier lines are
// frozen. There is never more than one live line.
type Transcript struct {
	mu    sync.Mutex
	lines []string
}

// NewTranscript creates a transcript with a single empty live line.
func NewTranscript() *Transcript {
	return &Transcript{lines: []string{""}}
}

// SetLive replaces the live line in place.
func (t *Transcript) SetLive(text string) {
	t.mu.Lock()
	t.lines[len(t.lines)-1] = text
	t.mu.Unlock()
}

// StartLine freezes the live line and opens a new one holding text.
func (t *Transcript) StartLine(text string) {
	t.mu.Lock()
	t.lines = append(t.lines, text)
	t.mu.Unlock()
}

// CloseLive freezes a non-empty live line by opening a fresh empty one.
// Reports whether anything changed.
func (t *Transcript) CloseLive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lines[len(t.lines)-1] == "" {
		return false
	}
	t.lines = append(t.lines, "")
	return true
}

// Live returns the current live line text.
func (t *Transcript) Live() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines[len(t.lines)-1]
}

// Lines returns a copy of all lines, the live line last.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
