package elevenlabs

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
)

func (c *Client) speechToSpeechRequest(ctx context.Context, voiceID, sourcePath, languageCode, urlSuffix string) (*http.Response, error) {
	settings := SettingsFor(languageCode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("audio", filepath.Base(sourcePath))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source audio: %w", err)
	}
	_, err = io.Copy(part, f)
	f.Close()
	if err != nil {
		return nil, err
	}

	if err := mw.WriteField("model_id", settings.ModelID); err != nil {
		return nil, err
	}
	vs, err := json.Marshal(settings.VoiceSettings)
	if err != nil {
		return nil, err
	}
	if err := mw.WriteField("voice_settings", string(vs)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/speech-to-speech/"+voiceID+urlSuffix, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// ConvertSpeechToSpeech resynthesizes the source recording in the cloned
// voice's timbre and returns the whole audio payload buffered in memory.
func (c *Client) ConvertSpeechToSpeech(ctx context.Context, voiceID, sourcePath, languageCode string) ([]byte, error) {
	resp, err := c.speechToSpeechRequest(ctx, voiceID, sourcePath, languageCode, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// ConvertSpeechToSpeechStream is the streaming variant: the converted audio is
// written directly to destPath instead of being buffered. Output is
// byte-for-byte identical with the buffered variant. The destination file is
// removed on any error so a failed conversion never leaves a partial artifact.
func (c *Client) ConvertSpeechToSpeechStream(ctx context.Context, voiceID, sourcePath, languageCode, destPath string) (err error) {
	resp, reqErr := c.speechToSpeechRequest(ctx, voiceID, sourcePath, languageCode, "/stream")
	if reqErr != nil {
		return reqErr
	}
	defer resp.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(destPath)
		}
	}()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to stream converted audio: %w", err)
	}
	return nil
}
