// Package chat wraps the Gemini API for narrative generation: it maps
// conversation turns onto the wire format, pins the structured-output
// response schema, and returns the raw JSON text for strict decoding
// upstream.
package chat

import (
	"context"
	"fmt"
	"time"

	"narasi-web/internal/narrative"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GenerationError reports a failed generation call: transport failure,
// non-success status, or an empty reply from the service. Generation is
// never retried here; the caller surfaces the failure and leaves prior
// state untouched.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("generation failed (model %s): empty response", e.Model)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Client calls the Gemini API with a fixed response schema.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient creates a Gemini client for the given API key. The model is
// resolved once at construction (GEMINI_MODEL override or the default).
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{genai: cli, model: GetModelName()}, nil
}

// Model returns the resolved model name.
func (c *Client) Model() string { return c.model }

// ValidateKey makes a minimal request to verify the API key works before the
// server starts accepting sessions.
func (c *Client) ValidateKey(ctx context.Context) error {
	log.Debug().Str("model", c.model).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text("hi"), nil)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("API key validation failed")
		return fmt.Errorf("validate API key: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("validate API key: empty response")
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("API key validated")
	return nil
}

// Generate sends the system instruction plus the full ordered turn sequence
// and returns the raw response text, which is expected to be JSON matching
// the output schema. One call per invocation; no retry.
func (c *Client) Generate(ctx context.Context, systemInstruction string, turns []narrative.Turn) (string, error) {
	contents := toContents(turns)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   outputSchema,
	}

	log.Debug().
		Str("model", c.model).
		Int("turns", len(contents)).
		Msg("Starting Gemini API call")

	callStart := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(callStart)

	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Gemini API call failed")
		return "", &GenerationError{Model: c.model, Err: err}
	}
	if resp == nil {
		return "", &GenerationError{Model: c.model}
	}

	text := resp.Text()
	if text == "" {
		return "", &GenerationError{Model: c.model}
	}

	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Gemini API response received")

	return text, nil
}

// toContents maps conversation turns onto the Gemini wire format. Text parts
// become Text parts; document parts become inline blobs with their declared
// MIME type.
func toContents(turns []narrative.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			if p.Text != "" {
				parts = append(parts, &genai.Part{Text: p.Text})
			}
			if p.HasData() {
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{
						MIMEType: p.MediaType,
						Data:     p.Data,
					},
				})
			}
		}
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: parts,
		})
	}
	return contents
}
