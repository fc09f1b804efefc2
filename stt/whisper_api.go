package stt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultWhisperAPIURL = "https://api.openai.com/v1/audio/transcriptions"

// WhisperAPI transcribes through an OpenAI-compatible transcription
// endpoint. Each segment is uploaded as a mono 16-bit WAV file.
type WhisperAPI struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey  string
	BaseURL string // optional, defaults to OpenAI's endpoint
	Model   string // optional, defaults to "whisper-1"
}

// NewWhisperAPI creates a new WhisperAPI provider.
func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWhisperAPIURL
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	return &WhisperAPI{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (w *WhisperAPI) Name() string  { return "whisper-api" }
func (w *WhisperAPI) IsReady() bool { return w.apiKey != "" }
func (w *WhisperAPI) Close() error  { return nil }

// Transcribe uploads the segment and returns the recognized text.
func (w *WhisperAPI) Transcribe(audio []float32, language string) (*TranscribeResult, error) {
	if !w.IsReady() {
		return nil, fmt.Errorf("stt: API key required for whisper-api")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "segment.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(encodeWAV(audio, 16000)); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	if err := writer.WriteField("model", w.model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	// The API treats an absent language as auto-detect and rejects "auto".
	if language != "" && language != "auto" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error %d: %s", resp.StatusCode, body)
	}

	var apiResp struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &TranscribeResult{Text: apiResp.Text, Language: apiResp.Language}, nil
}
