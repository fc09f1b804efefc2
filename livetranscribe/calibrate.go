package livetranscribe

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

const (
	// calibrationDuration is how much ambient audio to collect.
	calibrationDuration = 3 * time.Second
	// calibrationWait bounds the whole procedure so it never hangs when no
	// audio arrives.
	calibrationWait = 4 * time.Second
	// calibrationFactor scales the measured noise floor into a threshold.
	calibrationFactor = 2.5
)

// Calibrate measures ambient noise and derives the VAD energy threshold
// from it. The assembler is put into bypass mode so raw frames reach the
// collector unfiltered; if the stream is not already running it is started
// for the measurement and stopped afterwards.
//
// Collecting nothing within the bounded wait is not an error: the previous
// threshold is kept and a warning is logged.
func (r *Recorder) Calibrate() error {
	wasRecording := r.State() == StateRecording
	r.state.Store(int32(StateCalibrating))

	target := int(calibrationDuration.Seconds() * float64(r.cfg.SampleRate))

	var (
		mu    sync.Mutex
		noise []int16
		done  bool
	)
	cond := sync.NewCond(&mu)

	r.assembler.setBypass(func(frame []int16) {
		mu.Lock()
		if !done {
			noise = append(noise, frame...)
			if len(noise) >= target {
				done = true
				cond.Broadcast()
			}
		}
		mu.Unlock()
	})
	defer r.assembler.setBypass(nil)

	if !wasRecording {
		if err := r.dev.Start(r.streamConfig(), r.assembler.Process); err != nil {
			r.state.Store(int32(StateIdle))
			return fmt.Errorf("start capture for calibration: %w", err)
		}
		defer r.dev.Stop()
	}

	timeout := time.AfterFunc(calibrationWait, func() {
		mu.Lock()
		done = true
		cond.Broadcast()
		mu.Unlock()
	})
	defer timeout.Stop()

	mu.Lock()
	for !done {
		cond.Wait()
	}
	samples := noise
	mu.Unlock()

	if wasRecording {
		r.state.Store(int32(StateRecording))
	} else {
		r.state.Store(int32(StateIdle))
	}

	if len(samples) == 0 {
		slog.Warn("calibration collected no audio, keeping energy threshold",
			"threshold", r.EnergyThreshold())
		return nil
	}

	rms := frameRMS(samples)
	threshold := int(math.Round(rms * calibrationFactor))
	r.threshold.Store(int64(threshold))
	slog.Info("ambient noise calibrated",
		"rms", rms, "threshold", threshold, "samples", len(samples))
	return nil
}
