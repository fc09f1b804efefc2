package livetranscribe

import (
	"errors"
	"testing"
	"time"

	"go.aimuz.me/livescribe/audiocapture"
)

// feedingCapturer pushes a fixed stream of frames from a goroutine as soon
// as a handler is registered, imitating the driver thread.
type feedingCapturer struct {
	fakeCapturer
	frames [][]int16
}

func (f *feedingCapturer) Start(cfg audiocapture.StreamConfig, onFrame func([]int16)) error {
	if err := f.fakeCapturer.Start(cfg, onFrame); err != nil {
		return err
	}
	go func() {
		for _, frame := range f.frames {
			f.feed(frame)
		}
	}()
	return nil
}

// Three seconds of ambient noise at RMS 40 must yield a threshold of
// round(40 * 2.5) = 100.
func TestCalibrateDerivesThreshold(t *testing.T) {
	dev := &feedingCapturer{}
	// 50 frames x 1024 samples > the 48000-sample target at 16 kHz.
	for i := 0; i < 50; i++ {
		dev.frames = append(dev.frames, constFrame(1024, 40))
	}

	r := NewRecorder(dev, DefaultRecorderConfig())
	if err := r.Calibrate(); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}

	if got := r.EnergyThreshold(); got != 100 {
		t.Errorf("threshold = %d, want 100", got)
	}
	if r.State() != StateIdle {
		t.Errorf("state = %v after standalone calibration, want idle", r.State())
	}
	if dev.stops != 1 {
		t.Errorf("stream stopped %d times, want 1 (started solely for calibration)", dev.stops)
	}
}

func TestCalibrateStartFailure(t *testing.T) {
	dev := &fakeCapturer{startErr: errors.New("no device")}
	r := NewRecorder(dev, DefaultRecorderConfig())

	if err := r.Calibrate(); err == nil {
		t.Fatal("expected error when capture cannot start")
	}
	if r.State() != StateIdle {
		t.Errorf("state = %v, want idle", r.State())
	}
}

// With no audio at all the bounded wait expires, the previous threshold is
// kept, and calibration still succeeds.
func TestCalibrateNoAudioKeepsThreshold(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the calibration timeout")
	}

	dev := &fakeCapturer{}
	r := NewRecorder(dev, DefaultRecorderConfig())
	r.SetEnergyThreshold(777)

	start := time.Now()
	if err := r.Calibrate(); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	elapsed := time.Since(start)

	if got := r.EnergyThreshold(); got != 777 {
		t.Errorf("threshold = %d, want previous value 777", got)
	}
	if elapsed > 6*time.Second {
		t.Errorf("calibration blocked for %v, wait is not bounded", elapsed)
	}
}

func TestCalibrateRestoresVAD(t *testing.T) {
	dev := &feedingCapturer{}
	for i := 0; i < 50; i++ {
		dev.frames = append(dev.frames, constFrame(1024, 40))
	}

	r := NewRecorder(dev, DefaultRecorderConfig())
	if err := r.Calibrate(); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}

	// Bypass must be off again: a loud frame opens a segment.
	r.assembler.Process(constFrame(1024, 800))
	if r.assembler.buffered() != 1024 {
		t.Errorf("buffered = %d after calibration, want 1024", r.assembler.buffered())
	}
}
