package livetranscribe

import (
	"sync/atomic"
	"testing"
)

// constFrame builds a frame whose RMS equals amp exactly.
func constFrame(n int, amp int16) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		frame[i] = amp
	}
	return frame
}

func newTestAssembler(threshold int64, maxSamples, maxSilence int) (*SegmentAssembler, *[]Segment) {
	var flushed []Segment
	th := new(atomic.Int64)
	th.Store(threshold)
	a := newSegmentAssembler(th, maxSamples, maxSilence, func(seg Segment) {
		flushed = append(flushed, seg)
	})
	return a, &flushed
}

func TestSilenceBeforeSpeechNotBuffered(t *testing.T) {
	a, flushed := newTestAssembler(500, 1<<20, 16)

	for i := 0; i < 100; i++ {
		a.Process(constFrame(1024, 50))
	}

	if a.buffered() != 0 {
		t.Errorf("buffered = %d after pure silence, want 0", a.buffered())
	}
	if len(*flushed) != 0 {
		t.Errorf("flushed %d segments from pure silence, want 0", len(*flushed))
	}
}

func TestVoicedFrameOpensSegment(t *testing.T) {
	a, _ := newTestAssembler(500, 1<<20, 16)

	a.Process(constFrame(1024, 800))

	if a.buffered() != 1024 {
		t.Errorf("buffered = %d, want 1024", a.buffered())
	}
}

// Twenty voiced frames followed by silence must flush exactly once, on the
// 16th silent frame (phraseTimeout 1s at 16 kHz with 1024-sample frames).
func TestFlushOnTrailingSilence(t *testing.T) {
	const (
		frameSize  = 1024
		maxSilence = 16 // ceil(1.0 * 16000 / 1024)
	)
	a, flushed := newTestAssembler(500, 1<<20, maxSilence)

	for i := 0; i < 20; i++ {
		a.Process(constFrame(frameSize, 800))
	}

	for i := 1; i <= 60; i++ {
		a.Process(constFrame(frameSize, 50))

		switch {
		case i < maxSilence && len(*flushed) != 0:
			t.Fatalf("flushed after %d silent frames, want none before %d", i, maxSilence)
		case i == maxSilence && len(*flushed) != 1:
			t.Fatalf("flushed %d segments at silent frame %d, want exactly 1", len(*flushed), i)
		}
	}

	if len(*flushed) != 1 {
		t.Fatalf("flushed %d segments total, want 1", len(*flushed))
	}

	// Voiced run plus the retained trailing silence.
	wantLen := (20 + maxSilence) * frameSize
	if len((*flushed)[0]) != wantLen {
		t.Errorf("segment length = %d, want %d", len((*flushed)[0]), wantLen)
	}
	if a.buffered() != 0 {
		t.Errorf("buffered = %d after flush, want 0", a.buffered())
	}
}

func TestFlushOnRecordTimeout(t *testing.T) {
	const frameSize = 1024
	// Flush once the buffer reaches four frames worth of samples.
	a, flushed := newTestAssembler(500, 4*frameSize, 1<<20)

	for i := 0; i < 10; i++ {
		a.Process(constFrame(frameSize, 800))
	}

	if len(*flushed) != 2 {
		t.Fatalf("flushed %d segments, want 2", len(*flushed))
	}
	for i, seg := range *flushed {
		if len(seg) != 4*frameSize {
			t.Errorf("segment %d length = %d, want %d", i, len(seg), 4*frameSize)
		}
	}
}

func TestBypassRoutesRawFrames(t *testing.T) {
	a, flushed := newTestAssembler(500, 1<<20, 16)

	var raw []int16
	a.setBypass(func(frame []int16) {
		raw = append(raw, frame...)
	})

	a.Process(constFrame(1024, 800))
	a.Process(constFrame(1024, 50))

	if len(raw) != 2048 {
		t.Errorf("bypass received %d samples, want 2048", len(raw))
	}
	if a.buffered() != 0 {
		t.Errorf("buffered = %d in bypass mode, want 0", a.buffered())
	}
	if len(*flushed) != 0 {
		t.Errorf("flushed %d segments in bypass mode, want 0", len(*flushed))
	}

	// Restoring normal assembly buffers voiced frames again.
	a.setBypass(nil)
	a.Process(constFrame(1024, 800))
	if a.buffered() != 1024 {
		t.Errorf("buffered = %d after bypass cleared, want 1024", a.buffered())
	}
}

func TestResetDiscardsPartialSegment(t *testing.T) {
	a, flushed := newTestAssembler(500, 1<<20, 16)

	a.Process(constFrame(1024, 800))
	a.reset()

	if a.buffered() != 0 {
		t.Errorf("buffered = %d after reset, want 0", a.buffered())
	}

	// Trailing-silence count must restart too: silence right after reset
	// is silence before speech again.
	a.Process(constFrame(1024, 50))
	if a.buffered() != 0 {
		t.Error("silence after reset was buffered")
	}
	if len(*flushed) != 0 {
		t.Errorf("flushed %d segments, want 0", len(*flushed))
	}
}
