package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/neurobridge-coursegen/internal/content/textutil"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/promptstyle"
)

// GenerateText returns free text for prompt. Unless opts.SkipStatusCheck is
// set, the cached backend status is consulted first so a known outage fails
// without a wasted round trip.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts TextOptions) (*TextResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, NewValidationError("Prompt is required.", "generate-text: empty prompt", nil)
	}
	if !opts.SkipStatusCheck {
		if err := c.ensureAvailable(ctx); err != nil {
			return nil, err
		}
	}

	mode := opts.Mode
	if mode == "" {
		mode = promptstyle.ModeText
	}
	req := textRequest{
		Prompt:        textutil.Truncate(prompt, textutil.MaxTextPromptChars),
		Model:         strings.TrimSpace(opts.Model),
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
		SystemPrompt:  promptstyle.ApplySystem(opts.SystemPrompt, mode),
		EnhancePrompt: opts.EnhancePrompt,
	}

	start := c.now()
	var data textData
	if err := c.do(ctx, call{op: "generate_text", method: http.MethodPost, path: pathGenerateText, body: req, out: &data}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Text) == "" {
		return nil, NewValidationError("", "generate-text: empty text", nil)
	}

	c.log.Debug("Generated text",
		"model", req.Model,
		"tokens", data.TokensUsed,
		"cost", data.Cost,
		"duration", c.now().Sub(start).String(),
	)
	c.notifyUsage(ctx, UsageEvent{Operation: "generate_text", Model: req.Model, TokensUsed: data.TokensUsed, Cost: data.Cost})
	return &TextResult{Text: data.Text, TokensUsed: data.TokensUsed, Cost: data.Cost}, nil
}

// GenerateStructured asks the backend for a JSON object. The backend owns
// JSON validity; the payload is returned undecoded.
func (c *Client) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, opts StructuredOptions) (*StructuredResult, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return nil, NewValidationError("Prompt is required.", "generate-structured: empty user prompt", nil)
	}
	req := structuredRequest{
		SystemPrompt: promptstyle.ApplySystem(systemPrompt, promptstyle.ModeJSON),
		UserPrompt:   textutil.Truncate(userPrompt, textutil.MaxTextPromptChars),
		Model:        strings.TrimSpace(opts.Model),
		MaxTokens:    opts.MaxTokens,
		Temperature:  opts.Temperature,
	}

	var data structuredData
	if err := c.do(ctx, call{op: "generate_structured", method: http.MethodPost, path: pathGenerateStructured, body: req, out: &data}); err != nil {
		return nil, err
	}
	if len(data.JSONData) == 0 || string(data.JSONData) == "null" {
		return nil, NewValidationError("", "generate-structured: missing jsonData", nil)
	}

	c.notifyUsage(ctx, UsageEvent{Operation: "generate_structured", Model: req.Model, TokensUsed: data.TokensUsed, Cost: data.Cost})
	return &StructuredResult{Data: data.JSONData, TokensUsed: data.TokensUsed, Cost: data.Cost}, nil
}

// Decode unmarshals the payload into v.
func (r *StructuredResult) Decode(v any) error {
	if r == nil || len(r.Data) == 0 {
		return NewValidationError("", "structured result is empty", nil)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return NewValidationError("", fmt.Sprintf("structured result does not match %T", v), err)
	}
	return nil
}

// Object returns the payload as a JSON object, failing for arrays, strings
// and other non-object values.
func (r *StructuredResult) Object() (map[string]any, error) {
	var obj map[string]any
	if err := r.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, NewValidationError("", "structured result is not an object", nil)
	}
	return obj, nil
}

func (c *Client) ensureAvailable(ctx context.Context) error {
	st, err := c.Status(ctx, false)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A failed probe says nothing definite; let the real call decide.
		c.log.Warn("Gateway status probe failed; continuing", "error", errorDetail(err))
		return nil
	}
	if !st.CanGenerate() {
		return &Error{Kind: KindServiceUnavailable, Message: msgUnavailable, Detail: "status probe reports generation unavailable"}
	}
	return nil
}
