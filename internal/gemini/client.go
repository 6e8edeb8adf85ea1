// Package gemini is a thin REST client for the Google Generative Language
// API. It covers exactly the two calls the narration pipeline needs:
// translate-and-segment (generateContent with a JSON response schema) and
// speech synthesis (the TTS models, which return raw 16-bit mono PCM as
// base64 inline data).
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/narravoapp/narravo-server/internal/config"
	"github.com/narravoapp/narravo-server/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini API. Safe for concurrent use.
type Client struct {
	apiKey     string
	textModel  string
	ttsModel   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.GeminiConfig, logger *slog.Logger) *Client {
	return &Client{
		apiKey:    cfg.APIKey,
		textModel: cfg.TextModel,
		ttsModel:  cfg.TTSModel,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SegmentPair is one translated subtitle unit, untimed.
type SegmentPair struct {
	Source     string `json:"source"`
	Translated string `json:"translated"`
}

// Request/response shapes for the generateContent endpoint. Only the fields
// the pipeline reads are modeled.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     *responseSchema `json:"responseSchema,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig   `json:"speechConfig,omitempty"`
}

type responseSchema struct {
	Type  string                     `json:"type"`
	Items *responseSchema            `json:"items,omitempty"`
	Props map[string]*responseSchema `json:"properties,omitempty"`
	Req   []string                   `json:"required,omitempty"`
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

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// segmentSchema constrains the translation response to an ordered array of
// {source, translated} objects so no prose leaks into the payload.
var segmentSchema = &responseSchema{
	Type: "ARRAY",
	Items: &responseSchema{
		Type: "OBJECT",
		Props: map[string]*responseSchema{
			"source":     {Type: "STRING"},
			"translated": {Type: "STRING"},
		},
		Req: []string{"source", "translated"},
	},
}

// TranslateSegments asks the text model to translate the input and split it
// into subtitle-sized segments, preserving order. The pairs carry no timing.
func (c *Client) TranslateSegments(ctx context.Context, text string, source, target domain.Language) ([]SegmentPair, error) {
	prompt := fmt.Sprintf(
		"Translate the following %s text into %s. Split it into short subtitle segments "+
			"of at most one sentence each, in the original order. For each segment return "+
			"the original text as \"source\" and its translation as \"translated\". "+
			"Do not merge, reorder, or drop any part of the text.\n\n%s",
		source.Name, target.Name, text,
	)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   segmentSchema,
		},
	}

	resp, err := c.generate(ctx, c.textModel, req)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	raw := firstText(resp)
	if raw == "" {
		return nil, fmt.Errorf("translate: empty model response")
	}

	var pairs []SegmentPair
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("translate: decode segments: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("translate: model returned no segments")
	}

	c.logger.Debug("Translation complete", "segments", len(pairs), "source", source.Tag, "target", target.Tag)
	return pairs, nil
}

// Synthesize asks the TTS model to speak the text with the given voice.
// Returns the raw PCM payload (16-bit signed, mono, the configured sample
// rate) decoded from the response's base64 inline data.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voiceID},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.ttsModel, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	data := firstInlineData(resp)
	if data == "" {
		return nil, fmt.Errorf("synthesize: no audio payload in response")
	}

	pcm, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("synthesize: decode audio payload: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("synthesize: empty audio payload")
	}

	c.logger.Debug("Synthesis complete", "voice", voiceID, "pcm_bytes", len(pcm))
	return pcm, nil
}

// generate performs one generateContent call against the given model.
func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest) (*generateResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("api error: %s: %s", resp.Status, string(body))
	}

	var out generateResponse
	if err := json.UnmarshalRead(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// firstText returns the first text part of the first candidate.
func firstText(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// firstInlineData returns the first inline data payload of the first candidate.
func firstInlineData(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data
			}
		}
	}
	return ""
}
