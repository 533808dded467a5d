package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		STTModel:     "#g1_whisper-large",
		TTSModel:     "#g1_aura-angus-en",
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  500 * time.Millisecond,
	}
}

func transcriptBody(status, transcript string) map[string]any {
	body := map[string]any{"status": status}
	if transcript != "" {
		body["result"] = map[string]any{
			"results": map[string]any{
				"channels": []any{
					map[string]any{
						"alternatives": []any{
							map[string]any{"transcript": transcript},
						},
					},
				},
			},
		}
	}
	return body
}

func TestTranscribePollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/stt/create":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "#g1_whisper-large", r.FormValue("model"))
			_, _, err := r.FormFile("audio")
			require.NoError(t, err)
			json.NewEncoder(w).Encode(map[string]any{"generation_id": "gen-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/stt/gen-1":
			n := polls.Add(1)
			if n < 3 {
				json.NewEncoder(w).Encode(transcriptBody("active", ""))
				return
			}
			json.NewEncoder(w).Encode(transcriptBody("succeeded", "show me a serum"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	text, err := c.Transcribe(context.Background(), []byte("audio-bytes"), "audio.mp3")
	require.NoError(t, err)
	assert.Equal(t, "show me a serum", text)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestTranscribeFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stt/create" {
			json.NewEncoder(w).Encode(map[string]any{"generation_id": "gen-1"})
			return
		}
		json.NewEncoder(w).Encode(transcriptBody("failed", ""))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Transcribe(context.Background(), []byte("x"), "audio.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestTranscribeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stt/create" {
			json.NewEncoder(w).Encode(map[string]any{"generation_id": "gen-1"})
			return
		}
		json.NewEncoder(w).Encode(transcriptBody("waiting", ""))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.PollTimeout = 30 * time.Millisecond

	c := NewClient(cfg)
	_, err := c.Transcribe(context.Background(), []byte("x"), "audio.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranscriptionTimeout)
}

func TestTranscribeCreateMissingGenerationID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Transcribe(context.Background(), []byte("x"), "audio.mp3")
	assert.Error(t, err)
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	wav := []byte("RIFF....WAVE")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tts", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "#g1_aura-angus-en", payload["model"])
		assert.Equal(t, "wav", payload["container"])
		assert.Equal(t, "linear16", payload["encoding"])
		assert.Equal(t, float64(24000), payload["sample_rate"])

		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	audio, err := c.Synthesize(context.Background(), "here are some products")
	require.NoError(t, err)
	assert.Equal(t, wav, audio)
}

func TestSynthesizeRejectsNonAudioResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"detail": "quota exceeded"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	assert.True(t, NewClient(testConfig("http://x")).Enabled())
	assert.False(t, NewClient(Config{}).Enabled())
}
