// Package speech wraps the AIML API speech endpoints: asynchronous
// transcription (submit then poll) and synchronous synthesis.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	errx "github.com/everglow-poc-v1/server/internal/core/error"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// ErrTranscriptionTimeout is returned when a transcription job does not
// finish within the configured polling window.
var ErrTranscriptionTimeout = errors.New("transcription polling timed out")

// Config holds the AIML API connection settings.
type Config struct {
	APIKey       string        `envconfig:"AIML_API_KEY"`
	BaseURL      string        `envconfig:"AIML_BASE_URL" default:"https://api.aimlapi.com/v1"`
	STTModel     string        `envconfig:"STT_MODEL" default:"#g1_whisper-large"`
	TTSModel     string        `envconfig:"TTS_MODEL" default:"#g1_aura-angus-en"`
	PollInterval time.Duration `envconfig:"STT_POLL_INTERVAL" default:"5s"`
	PollTimeout  time.Duration `envconfig:"STT_POLL_TIMEOUT" default:"600s"`
}

// Synthesis output format. The voice socket streams these frames verbatim.
const (
	ttsContainer  = "wav"
	ttsEncoding   = "linear16"
	ttsSampleRate = 24000
)

// Client calls the AIML speech endpoints.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether speech is configured. The voice transport refuses
// connections when it is not.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Transcribe submits audio for transcription and polls until the job
// finishes. Audio is expected in a container the API accepts (mp3, wav).
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	genID, err := c.createTranscription(ctx, audio, filename)
	if err != nil {
		return "", err
	}
	logx.Debug().Str("generation_id", genID).Msg("transcription job submitted")
	return c.pollTranscription(ctx, genID)
}

func (c *Client) createTranscription(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("model", c.cfg.STTModel); err != nil {
		return "", errx.WrapSpeech(err)
	}
	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		return "", errx.WrapSpeech(err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", errx.WrapSpeech(err)
	}
	if err := w.Close(); err != nil {
		return "", errx.WrapSpeech(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/stt/create", &body)
	if err != nil {
		return "", errx.WrapSpeech(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errx.WrapSpeech(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", errx.WrapSpeech(fmt.Errorf("stt create: %s", readErrorBody(resp)))
	}

	var created struct {
		GenerationID string `json:"generation_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", errx.WrapSpeech(fmt.Errorf("stt create decode: %w", err))
	}
	if created.GenerationID == "" {
		return "", errx.WrapSpeech(errors.New("stt create returned no generation_id"))
	}
	return created.GenerationID, nil
}

// pollTranscription drives the job state machine: waiting/active keep
// polling, succeeded yields the transcript, anything else fails.
func (c *Client) pollTranscription(ctx context.Context, genID string) (string, error) {
	deadline := time.Now().Add(c.cfg.PollTimeout)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, transcript, err := c.fetchTranscription(ctx, genID)
		if err != nil {
			return "", err
		}
		switch status {
		case "succeeded":
			return transcript, nil
		case "waiting", "active":
			// keep polling
		default:
			return "", errx.WrapSpeech(fmt.Errorf("transcription failed with status %q", status))
		}

		if time.Now().After(deadline) {
			return "", errx.WrapSpeech(ErrTranscriptionTimeout)
		}
		select {
		case <-ctx.Done():
			return "", errx.WrapSpeech(ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchTranscription(ctx context.Context, genID string) (status, transcript string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/stt/"+genID, nil)
	if err != nil {
		return "", "", errx.WrapSpeech(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", errx.WrapSpeech(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", errx.WrapSpeech(fmt.Errorf("stt poll: %s", readErrorBody(resp)))
	}

	var poll struct {
		Status string `json:"status"`
		Result struct {
			Results struct {
				Channels []struct {
					Alternatives []struct {
						Transcript string `json:"transcript"`
					} `json:"alternatives"`
				} `json:"channels"`
			} `json:"results"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&poll); err != nil {
		return "", "", errx.WrapSpeech(fmt.Errorf("stt poll decode: %w", err))
	}

	if poll.Status == "succeeded" {
		chans := poll.Result.Results.Channels
		if len(chans) == 0 || len(chans[0].Alternatives) == 0 {
			return "", "", errx.WrapSpeech(errors.New("transcription result carries no transcript"))
		}
		return poll.Status, chans[0].Alternatives[0].Transcript, nil
	}
	return poll.Status, "", nil
}

// Synthesize converts text to WAV audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"model":       c.cfg.TTSModel,
		"text":        text,
		"container":   ttsContainer,
		"encoding":    ttsEncoding,
		"sample_rate": ttsSampleRate,
	})
	if err != nil {
		return nil, errx.WrapSpeech(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tts", bytes.NewReader(payload))
	if err != nil {
		return nil, errx.WrapSpeech(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errx.WrapSpeech(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, errx.WrapSpeech(fmt.Errorf("tts: %s", readErrorBody(resp)))
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "audio") && !strings.HasSuffix(ct, "wav") {
		return nil, errx.WrapSpeech(fmt.Errorf("tts returned non-audio content type %q", ct))
	}
	return io.ReadAll(resp.Body)
}

func readErrorBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Sprintf("%d - %s", resp.StatusCode, strings.TrimSpace(string(b)))
}
