// Package livetranscribe turns a continuous microphone stream into discrete
// spoken utterances and folds their transcriptions into an evolving list of
// transcript lines.
//
// The pipeline runs on two threads: the audio driver thread feeds the
// SegmentAssembler, which pushes completed segments onto a SegmentQueue;
// the Dispatcher consumes the queue, calls the speech recognizer, and
// maintains the transcript.
package livetranscribe

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.aimuz.me/livescribe/audiocapture"
)

// State is the lifecycle of a recording session.
type State int32

const (
	StateIdle State = iota
	StateCalibrating
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DefaultEnergyThreshold is used until calibration or an explicit override
// replaces it.
const DefaultEnergyThreshold = 1000

// Config holds the recording parameters. Immutable once recording starts.
type Config struct {
	SampleRate int    // default 16000 Hz
	FrameSize  int    // samples per driver callback, default 1024
	DeviceName string // input device substring, empty = default

	RecordTimeout time.Duration // maximum segment duration, default 2s
	PhraseTimeout time.Duration // silence run that ends a segment, default 3s
}

// DefaultRecorderConfig returns the default recording configuration.
func DefaultRecorderConfig() Config {
	return Config{
		SampleRate:    16000,
		FrameSize:     1024,
		RecordTimeout: 2 * time.Second,
		PhraseTimeout: 3 * time.Second,
	}
}

// Recorder ties a capture device, the VAD assembler, and the segment queue
// into one recording session. Both threads share it: the driver thread
// through the assembler, the consumer through the queue. The energy
// threshold is a single atomic read per frame, no broader lock.
type Recorder struct {
	dev audiocapture.Capturer
	cfg Config

	threshold atomic.Int64
	state     atomic.Int32

	assembler *SegmentAssembler
	queue     *SegmentQueue
}

// NewRecorder creates a recorder over the given capture device.
func NewRecorder(dev audiocapture.Capturer, cfg Config) *Recorder {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = 1024
	}
	if cfg.RecordTimeout == 0 {
		cfg.RecordTimeout = 2 * time.Second
	}
	if cfg.PhraseTimeout == 0 {
		cfg.PhraseTimeout = 3 * time.Second
	}

	maxSamples := int(cfg.RecordTimeout.Seconds() * float64(cfg.SampleRate))
	maxSilence := int(math.Ceil(cfg.PhraseTimeout.Seconds() * float64(cfg.SampleRate) / float64(cfg.FrameSize)))

	r := &Recorder{
		dev:   dev,
		cfg:   cfg,
		queue: NewSegmentQueue(),
	}
	r.threshold.Store(DefaultEnergyThreshold)
	r.assembler = newSegmentAssembler(&r.threshold, maxSamples, maxSilence, r.queue.Push)
	return r
}

// Start opens the capture stream and begins segment assembly. Starting
// while already recording stops the prior stream first; starting after
// Stop begins a fresh session.
func (r *Recorder) Start() error {
	if err := r.dev.Start(r.streamConfig(), r.assembler.Process); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	r.state.Store(int32(StateRecording))
	return nil
}

// Stop halts the capture stream and discards any partial segment.
// Idempotent and safe to call from any goroutine, including while a frame
// callback is in flight.
func (r *Recorder) Stop() error {
	r.state.Store(int32(StateStopped))
	err := r.dev.Stop()
	r.assembler.reset()
	return err
}

// State returns the current session state.
func (r *Recorder) State() State {
	return State(r.state.Load())
}

// SetEnergyThreshold overrides the VAD energy threshold.
func (r *Recorder) SetEnergyThreshold(v int) {
	r.threshold.Store(int64(v))
}

// EnergyThreshold returns the current VAD energy threshold.
func (r *Recorder) EnergyThreshold() int {
	return int(r.threshold.Load())
}

// Segments returns the queue of completed segments for the consumer loop.
func (r *Recorder) Segments() *SegmentQueue {
	return r.queue
}

func (r *Recorder) streamConfig() audiocapture.StreamConfig {
	return audiocapture.StreamConfig{
		SampleRate: r.cfg.SampleRate,
		FrameSize:  r.cfg.FrameSize,
		DeviceName: r.cfg.DeviceName,
	}
}
