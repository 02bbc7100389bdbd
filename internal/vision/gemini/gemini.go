// Package gemini implements the vision Identifier using the Gemini
// generateContent REST API.
//
// The request carries the label image inline plus a fixed instruction, and
// constrains the output to a JSON schema so the response is guaranteed to be
// parseable structured data rather than prose. The service performs the
// sweetness classification itself; this client only validates it.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bankowy11-lgtm/vinoScans/internal/config"
	"github.com/bankowy11-lgtm/vinoScans/internal/vision"
	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com"

// labelPrompt is the fixed identification instruction. Sweetness gets
// particular emphasis because labels often state it only indirectly
// (secco, abboccato, amabile, dolce).
const labelPrompt = `Identify this Italian wine from its label or barcode.
Pay particular attention to the sweetness level: is it dry (secco), semi-dry (abboccato), semi-sweet (amabile) or sweet (dolce)?
Return the data as JSON.`

// Identifier calls the Gemini API over plain HTTP.
type Identifier struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new Gemini identifier from config.
func New(cfg config.GeminiConfig) *Identifier {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Identifier{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (g *Identifier) Name() string { return "gemini" }

// Identify sends the base64 JPEG to Gemini and parses the schema-constrained
// response into a wine record. The record ID and timestamp are assigned
// locally; the service does not provide them.
func (g *Identifier) Identify(ctx context.Context, imagePayload string) (*wine.Record, error) {
	if imagePayload == "" {
		return nil, fmt.Errorf("empty image payload")
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: "image/jpeg", Data: imagePayload}},
				{Text: labelPrompt},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   labelSchema(),
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling identify request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating identify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("identify failed (status %d): %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding identify response: %w", err)
	}

	text := genResp.firstText()
	if text == "" {
		return nil, fmt.Errorf("no content in response: %w", vision.ErrUnreadable)
	}

	record, err := parseRecord(text)
	if err != nil {
		slog.Debug("rejected identification payload", "error", err)
		return nil, fmt.Errorf("%v: %w", err, vision.ErrUnreadable)
	}

	slog.Debug("identification complete", "wine", record.Name, "dryness", record.Dryness)
	return record, nil
}

// Close is a no-op for the Gemini identifier.
func (g *Identifier) Close() error { return nil }

// parseRecord strictly decodes the service JSON into a Record. Unknown
// fields, missing required fields, and out-of-enum dryness literals are all
// contract violations; nothing is recovered from a malformed payload.
func parseRecord(text string) (*wine.Record, error) {
	var payload struct {
		ID             string   `json:"id"`
		Name           string   `json:"name"`
		Region         string   `json:"region"`
		Dryness        string   `json:"dryness"`
		Description    string   `json:"description"`
		Pairings       []string `json:"pairings"`
		GrapeType      string   `json:"grapeType"`
		AlcoholContent string   `json:"alcoholContent"`
		ServingTemp    string   `json:"servingTemp"`
		Classification string   `json:"classification"`
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %v", err)
	}

	dryness, err := wine.ParseDryness(payload.Dryness)
	if err != nil {
		return nil, err
	}
	if payload.Pairings == nil {
		return nil, fmt.Errorf("response missing pairings field")
	}

	record := &wine.Record{
		ID:             payload.ID,
		Name:           payload.Name,
		Region:         payload.Region,
		Dryness:        dryness,
		Description:    payload.Description,
		Pairings:       payload.Pairings,
		GrapeType:      payload.GrapeType,
		AlcoholContent: payload.AlcoholContent,
		ServingTemp:    payload.ServingTemp,
		Classification: payload.Classification,
		CreatedAt:      time.Now(),
	}

	// Older schema revisions omit the id; synthesize one so history and
	// clients always have a stable key.
	if record.ID == "" {
		record.ID = wine.NewID()
	}
	if record.ServingTemp == "" {
		record.ServingTemp = wine.DefaultServingTemp
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// --- Wire types ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) firstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// labelSchema declares the structured-output contract. The dryness enum is
// constrained at the wire level to the four known levels; Unknown is a
// local fallback only.
func labelSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"name":    map[string]any{"type": "STRING", "description": "Full name of the wine"},
			"region":  map[string]any{"type": "STRING", "description": "Region of origin in Italy"},
			"dryness": map[string]any{"type": "STRING", "enum": wine.WireLiterals(), "description": "Sweetness level"},
			"description": map[string]any{
				"type": "STRING", "description": "Short tasting note describing the wine's character",
			},
			"pairings": map[string]any{
				"type": "ARRAY", "items": map[string]any{"type": "STRING"},
				"description": "Foods this wine is best served with",
			},
			"grapeType":      map[string]any{"type": "STRING", "description": "Grape variety"},
			"alcoholContent": map[string]any{"type": "STRING", "description": "Alcohol content (estimated if not visible)"},
			"servingTemp":    map[string]any{"type": "STRING", "description": "Suggested serving temperature"},
			"classification": map[string]any{"type": "STRING", "description": "Wine-law tier such as DOCG, DOC or IGT"},
		},
		"required": []string{"name", "region", "dryness", "description", "pairings", "grapeType", "alcoholContent"},
	}
}
