package livetranscribe

import (
	"fmt"
	"io"
	"time"
)

// Sink receives transcript updates from the dispatch loop. Exactly one
// sink is active per session.
type Sink interface {
	// Update is called after the transcript changes. latest is the text
	// just produced, empty for a phrase close-out; newPhrase is true when
	// latest opened a new line.
	Update(lines []string, latest string, newPhrase bool)

	// Close is called once when the dispatch loop exits, with the final
	// set of lines.
	Close(lines []string)
}

// StreamSink prints each produced text as a plain line, suitable for
// piping into a downstream analyzer. No redraws, no cursor control.
type StreamSink struct {
	W          io.Writer
	Timestamps bool // prefix each line with the wall-clock time

	now func() time.Time
}

func (s *StreamSink) Update(_ []string, latest string, _ bool) {
	if latest == "" {
		return
	}
	if s.Timestamps {
		clock := s.now
		if clock == nil {
			clock = time.Now
		}
		fmt.Fprintf(s.W, "[%s] %s\n", clock().Format("15:04:05"), latest)
		return
	}
	fmt.Fprintln(s.W, latest)
}

func (s *StreamSink) Close([]string) {}

// InteractiveSink redraws the whole accumulated transcript after every
// update and dumps it once more on close.
type InteractiveSink struct {
	W io.Writer
}

func (s *InteractiveSink) Update(lines []string, _ string, _ bool) {
	// ANSI clear screen + home, same effect as the platform clear command.
	fmt.Fprint(s.W, "\x1b[2J\x1b[H")
	for _, line := range lines {
		fmt.Fprintln(s.W, line)
	}
}

func (s *InteractiveSink) Close(lines []string) {
	fmt.Fprint(s.W, "\n\nTranscription:\n")
	for _, line := range lines {
		fmt.Fprintln(s.W, line)
	}
}
