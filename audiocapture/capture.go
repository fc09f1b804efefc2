// Package audiocapture provides microphone capture over PortAudio.
//
// A capture session delivers fixed-size frames of mono 16-bit samples to a
// handler invoked on the audio driver's thread. The handler must do bounded
// work: anything expensive belongs on the consumer side of a queue.
package audiocapture

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrNilHandler is returned when Start is called without a frame handler.
var ErrNilHandler = errors.New("audiocapture: nil frame handler")

// ErrNoInputDevice is returned when no usable input device exists.
var ErrNoInputDevice = errors.New("audiocapture: no input device")

// StreamConfig describes how the microphone should be opened.
type StreamConfig struct {
	SampleRate int    // Samples per second, default 16000 Hz
	FrameSize  int    // Samples per driver callback, default 1024
	DeviceName string // Input device name substring, empty = default device
}

// DefaultStreamConfig returns the default capture configuration.
// 16 kHz mono is what whisper models expect.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SampleRate: 16000,
		FrameSize:  1024,
	}
}

// Capturer opens and closes microphone capture sessions.
// Device is the PortAudio implementation; tests substitute fakes.
type Capturer interface {
	// Start opens the input stream and begins invoking onFrame once per
	// frame on a driver-owned thread. If a stream is already running it is
	// stopped first.
	Start(cfg StreamConfig, onFrame func(frame []int16)) error

	// Stop halts and closes the stream. Idempotent and safe to call from
	// any goroutine, including while a frame callback is in flight.
	Stop() error
}

// Device captures microphone audio through PortAudio.
type Device struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	running bool
}

// NewDevice initializes PortAudio and returns a capture device.
// Call Close to release the PortAudio runtime.
func NewDevice() (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	return &Device{}, nil
}

// Start implements Capturer.
func (d *Device) Start(cfg StreamConfig, onFrame func(frame []int16)) error {
	if onFrame == nil {
		return ErrNilHandler
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = 1024
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		if err := d.stopLocked(); err != nil {
			return fmt.Errorf("stop previous stream: %w", err)
		}
	}

	info, err := inputDevice(cfg.DeviceName)
	if err != nil {
		return err
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.FrameSize

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		onFrame(in)
	})
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	d.stream = stream
	d.running = true
	return nil
}

// Stop implements Capturer.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	return d.stopLocked()
}

func (d *Device) stopLocked() error {
	err := d.stream.Stop()
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	d.stream = nil
	d.running = false
	if err != nil {
		return fmt.Errorf("close input stream: %w", err)
	}
	return nil
}

// Close stops any running stream and terminates PortAudio.
func (d *Device) Close() error {
	err := d.Stop()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

// Devices returns the names of all input-capable audio devices.
func Devices() ([]string, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			names = append(names, info.Name)
		}
	}
	return names, nil
}

// inputDevice resolves a device by name substring, or the default input
// device when name is empty.
func inputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		info, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, ErrNoInputDevice
		}
		return info, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	for _, info := range infos {
		if info.MaxInputChannels > 0 && strings.Contains(info.Name, name) {
			return info, nil
		}
	}
	return nil, fmt.Errorf("audiocapture: input device %q not found", name)
}
