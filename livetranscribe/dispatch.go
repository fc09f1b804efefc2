package livetranscribe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.aimuz.me/livescribe/stt"
)

const (
	// defaultPollInterval bounds the queue wait so phrase expiry is
	// re-checked during silence.
	defaultPollInterval = 250 * time.Millisecond
	// minSegmentDuration is the shortest window handed to the recognizer;
	// shorter segments are padded with silence.
	minSegmentDuration = 100 * time.Millisecond
)

// LineWriter persists finalized transcript lines.
type LineWriter interface {
	AppendLine(text string) error
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Queue    *SegmentQueue
	Provider stt.Provider
	Sink     Sink
	History  LineWriter // optional

	Language      string
	SampleRate    int
	PhraseTimeout time.Duration
}

// Dispatcher is the consumer side of the pipeline. It pops completed
// segments, runs them through the speech recognizer, and decides whether
// each result starts a new transcript line or rewrites the live one.
//
// Run owns all mutable state below; it is single-goroutine by design.
type Dispatcher struct {
	queue    *SegmentQueue
	provider stt.Provider
	sink     Sink
	history  LineWriter

	language      string
	sampleRate    int
	phraseTimeout time.Duration

	transcript   *Transcript
	pollInterval time.Duration
	now          func() time.Time

	phraseOpen  bool
	lastSegment time.Time
}

// NewDispatcher creates a dispatcher. Queue, Provider and Sink are
// required.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.PhraseTimeout == 0 {
		cfg.PhraseTimeout = 3 * time.Second
	}
	return &Dispatcher{
		queue:         cfg.Queue,
		provider:      cfg.Provider,
		sink:          cfg.Sink,
		history:       cfg.History,
		language:      cfg.Language,
		sampleRate:    cfg.SampleRate,
		phraseTimeout: cfg.PhraseTimeout,
		transcript:    NewTranscript(),
		pollInterval:  defaultPollInterval,
		now:           time.Now,
	}
}

// Transcript returns the transcript the dispatcher maintains.
func (d *Dispatcher) Transcript() *Transcript {
	return d.transcript
}

// Run processes segments until ctx is cancelled, then hands the final
// lines to the sink. Recognizer failures are reported and skipped; nothing
// here terminates the process.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer func() {
		if live := d.transcript.Live(); live != "" {
			d.appendHistory(live)
		}
		d.sink.Close(d.transcript.Lines())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seg, ok := d.queue.Pop(d.pollInterval)
		now := d.now()
		if !ok {
			d.checkPhraseExpiry(now)
			continue
		}
		d.handleSegment(seg, now)
	}
}

// handleSegment pads, normalizes, and recognizes one segment, then applies
// the phrase-boundary decision to the transcript.
func (d *Dispatcher) handleSegment(seg Segment, now time.Time) {
	newLine := d.phraseOpen && now.Sub(d.lastSegment) > d.phraseTimeout
	d.lastSegment = now
	d.phraseOpen = true

	minSamples := int(minSegmentDuration.Seconds() * float64(d.sampleRate))
	audio := toFloat32(padSilence(seg, minSamples))

	result, err := d.provider.Transcribe(audio, d.language)
	if err != nil {
		slog.Error("transcribe segment", "error", err, "samples", len(seg))
		return
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return
	}

	if newLine {
		frozen := d.transcript.Live()
		d.transcript.StartLine(text)
		d.appendHistory(frozen)
	} else {
		d.transcript.SetLive(text)
	}
	d.sink.Update(d.transcript.Lines(), text, newLine)
}

// checkPhraseExpiry declares the open phrase over when no segment has
// arrived for half again the phrase timeout, appending one separator line.
func (d *Dispatcher) checkPhraseExpiry(now time.Time) {
	if !d.phraseOpen || now.Sub(d.lastSegment) <= d.phraseTimeout*3/2 {
		return
	}
	d.phraseOpen = false

	live := d.transcript.Live()
	if !d.transcript.CloseLive() {
		return
	}
	d.appendHistory(live)
	d.sink.Update(d.transcript.Lines(), "", false)
}

func (d *Dispatcher) appendHistory(text string) {
	if d.history == nil || text == "" {
		return
	}
	if err := d.history.AppendLine(text); err != nil {
		slog.Warn("append transcript history", "error", err)
	}
}
