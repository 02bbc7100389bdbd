package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankowy11-lgtm/vinoScans/internal/config"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) *Synthesizer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.GeminiTTSConfig{
		APIKey:   "test-key",
		Model:    "gemini-2.5-flash-preview-tts",
		Voice:    "Kore",
		Endpoint: srv.URL,
	})
}

func audioResponse(pcm []byte) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{
					"inlineData": map[string]any{
						"mimeType": "audio/L16;codec=pcm;rate=24000",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					},
				}},
			},
		}},
	}
}

func TestSynthesizeDecodesPCMClip(t *testing.T) {
	pcm := []byte{0x00, 0x00, 0x00, 0x40} // samples 0 and 16384
	var gotReq speechRequest
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(audioResponse(pcm))
	})

	clip, err := synth.Synthesize(context.Background(), "A bold ruby red.", narrate.SynthesizeOpts{})
	require.NoError(t, err)

	assert.Equal(t, pcm, clip.PCM)
	assert.Equal(t, 24000, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)

	samples := clip.Samples()
	require.Len(t, samples, 2)
	assert.InDelta(t, 0.0, samples[0], 1e-9)
	assert.InDelta(t, 0.5, samples[1], 1e-9)

	// The request carried the persona wrap, the audio modality and the voice.
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	sent := gotReq.Contents[0].Parts[0].Text
	assert.True(t, strings.HasPrefix(sent, personaPrompt))
	assert.True(t, strings.HasSuffix(sent, "A bold ruby red."))
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, []string{"AUDIO"}, gotReq.GenerationConfig.ResponseModalities)
	require.NotNil(t, gotReq.GenerationConfig.SpeechConfig)
	assert.Equal(t, "Kore", gotReq.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
}

func TestSynthesizeRejectsEmptyTextLocally(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no service call should be made for empty text")
	})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := synth.Synthesize(context.Background(), text, narrate.SynthesizeOpts{})
		assert.ErrorIs(t, err, narrate.ErrEmptyText)
	}
}

func TestSynthesizeMissingAudioPayload(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})
	_, err := synth.Synthesize(context.Background(), "notes", narrate.SynthesizeOpts{})
	assert.ErrorIs(t, err, narrate.ErrNoAudio)
}

func TestSynthesizeServiceFailure(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	_, err := synth.Synthesize(context.Background(), "notes", narrate.SynthesizeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSynthesizeVoiceOverride(t *testing.T) {
	var gotReq speechRequest
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(audioResponse([]byte{0x00, 0x00}))
	})

	_, err := synth.Synthesize(context.Background(), "notes", narrate.SynthesizeOpts{Voice: "Puck"})
	require.NoError(t, err)
	assert.Equal(t, "Puck", gotReq.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
}
