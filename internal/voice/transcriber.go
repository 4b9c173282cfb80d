// Package voice turns recorded recitations into counter increments. Audio
// files are sent to a transcription service; transcripts that contain a
// trigger phrase count as one repetition.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/metrics"
)

// transcribePath is the endpoint path on the transcription server.
const transcribePath = "/transcribe"

// TranscribeResponse is the JSON body returned by the transcription server.
type TranscribeResponse struct {
	Transcription string `json:"transcription"`
}

// Transcriber uploads audio files to a speech-to-text endpoint.
type Transcriber struct {
	client  *http.Client
	baseURL string
}

// NewTranscriber creates a transcriber for the server at baseURL.
func NewTranscriber(baseURL string, timeout time.Duration) *Transcriber {
	return NewTranscriberWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewTranscriberWithClient creates a transcriber using client. A nil client
// gets a 30 second timeout.
func NewTranscriberWithClient(baseURL string, client *http.Client) *Transcriber {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Transcriber{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Transcribe uploads the audio file at path as the multipart field "file"
// and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	return t.TranscribeAs(ctx, path, filepath.Base(path))
}

// TranscribeAs is Transcribe with an explicit upload file name, for files
// that were renamed after they arrived.
func (t *Transcriber) TranscribeAs(ctx context.Context, path, name string) (string, error) {
	start := time.Now()
	defer func() { metrics.ObserveTranscribe(time.Since(start)) }()

	body, contentType, err := multipartFile(path, name)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+transcribePath, body)
	if err != nil {
		return "", fmt.Errorf("failed to create transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcribe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcribe failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out TranscribeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse transcribe response: %w", err)
	}

	return out.Transcription, nil
}

func multipartFile(path, name string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to copy audio file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
