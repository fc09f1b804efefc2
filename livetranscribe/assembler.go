package livetranscribe

import (
	"sync"
	"sync/atomic"
)

// SegmentAssembler groups raw capture frames into utterance-sized segments
// using energy-based voice activity detection.
//
// Process runs on the audio driver's thread. One short lock guards the
// segment buffer, the trailing-silence counter, and the flush decision, so
// a flush and the first append of the next segment never interleave.
type SegmentAssembler struct {
	threshold *atomic.Int64 // shared energy threshold, read every frame

	maxSamples int // flush once the buffer holds a full record window
	maxSilence int // flush after this many trailing silent frames

	mu            sync.Mutex
	buf           []int16
	silenceChunks int
	bypassFn      func(frame []int16) // non-nil while calibrating
	emit          func(seg Segment)
}

func newSegmentAssembler(threshold *atomic.Int64, maxSamples, maxSilence int, emit func(Segment)) *SegmentAssembler {
	return &SegmentAssembler{
		threshold:  threshold,
		maxSamples: maxSamples,
		maxSilence: maxSilence,
		emit:       emit,
	}
}

// Process consumes one frame from the capture callback. The frame is owned
// by the driver and copied before Process returns.
func (a *SegmentAssembler) Process(frame []int16) {
	a.mu.Lock()
	if fn := a.bypassFn; fn != nil {
		a.mu.Unlock()
		fn(frame)
		return
	}

	voiced := frameRMS(frame) > float64(a.threshold.Load())

	switch {
	case voiced:
		a.silenceChunks = 0
		a.buf = append(a.buf, frame...)
	case len(a.buf) > 0:
		// Silence inside an open segment is kept as trailing context.
		a.silenceChunks++
		a.buf = append(a.buf, frame...)
	default:
		// Silence before speech is never buffered.
		a.mu.Unlock()
		return
	}

	var seg Segment
	if len(a.buf) >= a.maxSamples || a.silenceChunks >= a.maxSilence {
		seg = a.buf
		a.buf = nil
		a.silenceChunks = 0
	}
	a.mu.Unlock()

	if seg != nil {
		a.emit(seg)
	}
}

// setBypass routes raw frames to fn instead of the VAD logic, used while
// measuring ambient noise. Pass nil to restore normal assembly.
func (a *SegmentAssembler) setBypass(fn func(frame []int16)) {
	a.mu.Lock()
	a.bypassFn = fn
	a.mu.Unlock()
}

// reset discards any buffered-but-unflushed partial segment.
func (a *SegmentAssembler) reset() {
	a.mu.Lock()
	a.buf = nil
	a.silenceChunks = 0
	a.mu.Unlock()
}

// buffered reports the current segment buffer length in samples.
func (a *SegmentAssembler) buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf)
}
