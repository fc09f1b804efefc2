// Package stt provides the speech-to-text contract and its backends.
package stt

import "fmt"

// TranscribeResult is the outcome of recognizing one audio segment.
type TranscribeResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Provider converts audio segments to text. Implementations return errors
// rather than panic: the dispatch loop reports a failure and moves on to
// the next segment.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// IsReady returns true if the provider can transcribe.
	IsReady() bool

	// Transcribe recognizes PCM float32 samples in [-1, 1] at 16 kHz.
	// language is a lowercase code like "en", empty or "auto" for
	// auto-detection.
	Transcribe(audio []float32, language string) (*TranscribeResult, error)

	// Close releases resources held by the provider.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Provider  string // "whisper-local" (default) or "whisper-api"
	ModelPath string // ggml model file for whisper-local
	APIKey    string // for whisper-api
	BaseURL   string // optional override for whisper-api
	Model     string // API model name, default "whisper-1"
}

// New creates a Provider for the configured backend.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "whisper-local":
		return NewWhisperLocal(cfg.ModelPath)
	case "whisper-api":
		return NewWhisperAPI(WhisperAPIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("stt: unknown provider %q", cfg.Provider)
	}
}
