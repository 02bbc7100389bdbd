// Package gemini implements the narration Synthesizer using the Gemini
// speech-generation REST API.
//
// The request asks for audio-modality output with a fixed prebuilt voice.
// The service returns base64-encoded raw PCM16, mono, 24 kHz, with no
// container header; decoding into a playable clip is handled by the
// narrate package.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bankowy11-lgtm/vinoScans/internal/config"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"

	// pcmSampleRate is fixed by the Gemini speech models.
	pcmSampleRate = 24000
)

// personaPrompt wraps the tasting notes in the sommelier persona.
const personaPrompt = "Read these tasting notes as a passionate, elegant Italian sommelier: "

// Synthesizer calls the Gemini speech API over plain HTTP.
type Synthesizer struct {
	apiKey   string
	model    string
	voice    string
	endpoint string
	client   *http.Client
}

// New creates a new Gemini synthesizer from config.
func New(cfg config.GeminiTTSConfig) *Synthesizer {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Synthesizer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		voice:    cfg.Voice,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Synthesize sends the persona-wrapped text to the speech model and decodes
// the returned PCM payload into a clip.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts narrate.SynthesizeOpts) (*narrate.Clip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, narrate.ErrEmptyText
	}

	voice := opts.Voice
	if voice == "" {
		voice = s.voice
	}

	reqBody := speechRequest{
		Contents: []content{{
			Parts: []part{{Text: personaPrompt + text}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling narration request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.endpoint, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating narration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("narration request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("narration failed (status %d): %s", resp.StatusCode, respBody)
	}

	var speechResp speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&speechResp); err != nil {
		return nil, fmt.Errorf("decoding narration response: %w", err)
	}

	payload := speechResp.firstAudio()
	if payload == "" {
		return nil, narrate.ErrNoAudio
	}

	pcm, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding audio payload: %w", err)
	}

	clip := &narrate.Clip{
		PCM:        pcm,
		SampleRate: pcmSampleRate,
		Channels:   1,
	}
	slog.Debug("narration synthesized",
		"text_length", len(text), "voice", voice, "pcm_bytes", len(pcm), "duration", clip.Duration())
	return clip, nil
}

// Close is a no-op — connections are per-request.
func (s *Synthesizer) Close() error { return nil }

// --- Wire types ---

type speechRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type speechResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *speechResponse) firstAudio() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].InlineData.Data
}
