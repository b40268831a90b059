package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCloneVoice(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotName string
		var gotFiles int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/voices/add", r.URL.Path)
			require.Equal(t, "secret", r.Header.Get("xi-api-key"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotName = r.FormValue("name")
			gotFiles = len(r.MultipartForm.File["files"])
			json.NewEncoder(w).Encode(map[string]string{"voice_id": "v123"})
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
		sample := writeSample(t, "sample.mp3", []byte("audio-bytes"))

		voiceID, err := client.CloneVoice(context.Background(), "dr_rao_submission_7", []string{sample}, "test clone")
		require.NoError(t, err)
		assert.Equal(t, "v123", voiceID)
		assert.Equal(t, "dr_rao_submission_7", gotName)
		assert.Equal(t, 1, gotFiles)
	})

	t.Run("skips missing samples", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Len(t, r.MultipartForm.File["files"], 1)
			json.NewEncoder(w).Encode(map[string]string{"voice_id": "v9"})
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		sample := writeSample(t, "ok.mp3", []byte("x"))

		voiceID, err := client.CloneVoice(context.Background(), "n", []string{"/nonexistent/a.mp3", sample}, "")
		require.NoError(t, err)
		assert.Equal(t, "v9", voiceID)
	})

	t.Run("no valid samples", func(t *testing.T) {
		client := NewClient(Config{APIKey: "k", BaseURL: "http://unused.invalid"})
		_, err := client.CloneVoice(context.Background(), "n", []string{"/nonexistent/a.mp3"}, "")
		assert.ErrorIs(t, err, ErrNoValidSamples)
	})

	t.Run("provider error carries status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":"voice limit reached"}`))
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		sample := writeSample(t, "s.mp3", []byte("x"))

		_, err := client.CloneVoice(context.Background(), "n", []string{sample}, "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "voice limit reached")
	})
}

func TestDeleteVoice(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			require.Equal(t, "/voices/v1", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		assert.NoError(t, client.DeleteVoice(context.Background(), "v1"))
	})

	t.Run("not found maps to ErrVoiceNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		err := client.DeleteVoice(context.Background(), "gone")
		assert.ErrorIs(t, err, ErrVoiceNotFound)
	})
}

func TestConvertSpeechToSpeech(t *testing.T) {
	payload := []byte("converted-audio-payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, stsMultilingualModel, r.FormValue("model_id"))
		assert.NotEmpty(t, r.FormValue("voice_settings"))
		assert.Len(t, r.MultipartForm.File["audio"], 1)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	source := writeSample(t, "master_hi.mp3", []byte("master-script"))

	t.Run("buffered", func(t *testing.T) {
		got, err := client.ConvertSpeechToSpeech(context.Background(), "v1", source, "hi")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("streamed output matches buffered", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.mp3")
		require.NoError(t, client.ConvertSpeechToSpeechStream(context.Background(), "v1", source, "hi", dest))

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("stream error removes partial output", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("wrong model class"))
		}))
		defer failing.Close()

		c := NewClient(Config{APIKey: "k", BaseURL: failing.URL})
		dest := filepath.Join(t.TempDir(), "out.mp3")
		err := c.ConvertSpeechToSpeechStream(context.Background(), "v1", source, "hi", dest)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/voices", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"voices": []map[string]string{
				{"voice_id": "a", "name": "one", "category": "cloned"},
				{"voice_id": "b", "name": "two", "category": "cloned"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	voices, err := client.ListVoices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, "a", voices[0].VoiceID)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/user", r.URL.Path)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		h, err := client.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.True(t, h.Healthy)
	})

	t.Run("bad key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("invalid api key"))
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "bad", BaseURL: srv.URL})
		h, err := client.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.False(t, h.Healthy)
		assert.Contains(t, h.Detail, "invalid api key")
	})
}

func TestSettingsFor(t *testing.T) {
	hi := SettingsFor("hi")
	assert.Equal(t, stsMultilingualModel, hi.ModelID)
	assert.Equal(t, 0.85, hi.VoiceSettings.SimilarityBoost)

	// unknown codes fall back to defaults
	unknown := SettingsFor("xx")
	assert.Equal(t, defaultSettings, unknown)
}
