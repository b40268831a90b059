package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// Client is a thin wrapper over the ElevenLabs voice API. It performs no
// internal retries; retry policy belongs to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the ElevenLabs client.
type Config struct {
	APIKey  string
	BaseURL string        // override for tests, defaults to the public API
	Timeout time.Duration // per-request timeout, 0 means no client timeout
}

// APIError wraps any non-2xx provider response with its status and body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: HTTP %d: %s", e.StatusCode, e.Body)
}

// ErrVoiceNotFound is returned by DeleteVoice when the provider reports 404.
// Callers treat it as already-deleted.
var ErrVoiceNotFound = &APIError{StatusCode: http.StatusNotFound, Body: "voice not found"}

// ErrNoValidSamples is returned by CloneVoice when none of the sample paths
// resolve to an existing file.
var ErrNoValidSamples = fmt.Errorf("elevenlabs: no valid sample files")

// NewClient creates a new ElevenLabs client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Voice is one provider-side voice slot.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

type listVoicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Health reports whether the provider is reachable with the configured key.
type Health struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail"`
}

// CloneVoice creates a provider-side voice from local sample files and returns
// the opaque voice id. At least one sample path must exist on disk.
func (c *Client) CloneVoice(ctx context.Context, name string, samplePaths []string, description string) (string, error) {
	var valid []string
	for _, p := range samplePaths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return "", ErrNoValidSamples
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if err := mw.WriteField("name", name); err != nil {
				return err
			}
			if description != "" {
				if err := mw.WriteField("description", description); err != nil {
					return err
				}
			}
			for _, p := range valid {
				part, err := mw.CreateFormFile("files", filepath.Base(p))
				if err != nil {
					return err
				}
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				_, err = io.Copy(part, f)
				f.Close()
				if err != nil {
					return err
				}
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voices/add", pr)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out addVoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.VoiceID == "" {
		return "", fmt.Errorf("elevenlabs: clone response missing voice_id")
	}
	return out.VoiceID, nil
}

// DeleteVoice removes a provider-side voice. A 404 maps to ErrVoiceNotFound so
// callers can reconcile already-deleted voices idempotently.
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/voices/"+voiceID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrVoiceNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// ListVoices returns all voices on the account.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out listVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Voices, nil
}

// HealthCheck probes the account endpoint with the configured key.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return Health{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Health{Healthy: false, Detail: err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Health{Healthy: false, Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, body)}, nil
	}
	return Health{Healthy: true, Detail: "ok"}, nil
}
