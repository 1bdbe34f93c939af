// Package elevenlabs provides an ElevenLabs-backed Speaker using the HTTP
// text-to-speech API. Synthesised MP3 audio is decoded and played locally
// through the default output device. It implements the tts.Speaker interface.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModel   = "eleven_turbo_v2"
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
)

// Compile-time assertion that Speaker satisfies tts.Speaker.
var _ tts.Speaker = (*Speaker)(nil)

// Option is a functional option for configuring the ElevenLabs Speaker.
type Option func(*Speaker)

// WithModel sets the ElevenLabs model ID (e.g., "eleven_turbo_v2").
func WithModel(model string) Option {
	return func(s *Speaker) { s.model = model }
}

// WithVoiceID sets the provider-specific voice identifier.
func WithVoiceID(voiceID string) Option {
	return func(s *Speaker) { s.voiceID = voiceID }
}

// WithHTTPClient overrides the HTTP client used for API calls. Useful in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Speaker) { s.httpClient = c }
}

// WithBaseURL overrides the API base URL, for proxies and tests.
func WithBaseURL(u string) Option {
	return func(s *Speaker) { s.baseURL = u }
}

// Speaker implements tts.Speaker backed by the ElevenLabs synthesis API.
// Playback is serialised: only one utterance plays at a time.
type Speaker struct {
	apiKey     string
	baseURL    string
	model      string
	voiceID    string
	httpClient *http.Client

	// playMu serialises access to the shared audio output device.
	playMu sync.Mutex
}

// New creates a new ElevenLabs Speaker. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Speaker, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	s := &Speaker{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		voiceID:    defaultVoiceID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// synthesizeRequest is the JSON payload sent to the ElevenLabs TTS endpoint.
type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Speak synthesises text via the ElevenLabs API and plays the resulting MP3
// audio to completion. Returns an error if the API call, decode, or playback
// setup fails.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	audio, err := s.synthesize(ctx, text)
	if err != nil {
		return err
	}
	return s.play(ctx, audio)
}

// synthesize performs the HTTP round-trip and returns the raw MP3 bytes.
func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: s.model})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: synthesis failed: status %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	return audio, nil
}

// play decodes the MP3 payload and plays it on the default output device,
// blocking until playback completes or ctx is cancelled.
func (s *Speaker) play(ctx context.Context, audio []byte) error {
	s.playMu.Lock()
	defer s.playMu.Unlock()

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
	if err != nil {
		return fmt.Errorf("elevenlabs: decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("elevenlabs: init output device: %w", err)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
