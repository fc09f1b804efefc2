package stt

import (
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperLocal runs whisper.cpp inference in-process through the Go
// bindings. The model is loaded once and reused for every segment.
type WhisperLocal struct {
	modelPath string

	mu    sync.Mutex // whisper contexts are not safe for concurrent use
	model whisper.Model
}

// NewWhisperLocal loads a ggml whisper model from the given path.
// The caller must Close the provider to release the model.
func NewWhisperLocal(modelPath string) (*WhisperLocal, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("stt: model path required for whisper-local")
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", modelPath, err)
	}

	return &WhisperLocal{modelPath: modelPath, model: model}, nil
}

func (w *WhisperLocal) Name() string { return "whisper-local" }

func (w *WhisperLocal) IsReady() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model != nil
}

// Transcribe recognizes PCM float32 samples at 16 kHz.
func (w *WhisperLocal) Transcribe(audio []float32, language string) (*TranscribeResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return nil, fmt.Errorf("stt: whisper model closed")
	}

	ctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	if language != "" && language != "auto" {
		if err := ctx.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("set language %q: %w", language, err)
		}
	}

	if err := ctx.Process(audio, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper next segment: %w", err)
		}
		parts = append(parts, seg.Text)
	}

	return &TranscribeResult{
		Text:     strings.TrimSpace(strings.Join(parts, " ")),
		Language: language,
	}, nil
}

func (w *WhisperLocal) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
