package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// GeminiClient wraps google.golang.org/genai for chat completions with
// declared function tools and for structured JSON output.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return g.model }

func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Generate(ctx context.Context, req Request, onText func(delta string)) (*Response, error) {
	contents := buildContents(req.History)
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp := &Response{}
	var text strings.Builder
	for chunk, err := range g.cli.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			return nil, fmt.Errorf("gemini: stream: %w", classifyProviderError(err))
		}
		for _, cand := range chunk.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
					if onText != nil {
						onText(part.Text)
					}
				}
				if part.FunctionCall != nil {
					args, err := json.Marshal(part.FunctionCall.Args)
					if err != nil {
						return nil, fmt.Errorf("gemini: encode call args: %w", err)
					}
					resp.Calls = append(resp.Calls, ToolCall{
						ID:   part.FunctionCall.ID,
						Name: part.FunctionCall.Name,
						Args: args,
					})
				}
			}
		}
	}
	resp.Text = text.String()
	return resp, nil
}

func (g *GeminiClient) GenerateObject(ctx context.Context, prompt string, input any, schema *genai.Schema) (json.RawMessage, error) {
	full := prompt
	if input != nil {
		enc, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("gemini: encode input: %w", err)
		}
		full = prompt + "\n\nInput:\n" + string(enc)
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: full}},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		res, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			err = classifyProviderError(err)
			var perm *PermanentError
			if errors.As(err, &perm) {
				// Bad credentials or a rejected schema will not get better on
				// a retry.
				return nil, fmt.Errorf("gemini: generate object: %w", err)
			}
			lastErr = err
			log.Printf("gemini: generate object attempt %d: %v", attempt, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}
		text := res.Text()
		if !json.Valid([]byte(text)) {
			lastErr = ErrInvalidJSON
			continue
		}
		return json.RawMessage(text), nil
	}
	return nil, fmt.Errorf("gemini: generate object: %w", lastErr)
}

// classifyProviderError marks client-side API rejections as permanent so
// callers stop retrying them. Rate limits and server errors stay retryable.
func classifyProviderError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return NewPermanentError(err)
	}
	return err
}

// buildContents converts neutral messages into the genai wire form. Tool
// results ride in a user-role content, matching the function-calling protocol.
func buildContents(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			switch {
			case p.Call != nil:
				var args map[string]any
				if len(p.Call.Args) > 0 {
					_ = json.Unmarshal(p.Call.Args, &args)
				}
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   p.Call.ID,
					Name: p.Call.Name,
					Args: args,
				}})
			case p.Result != nil:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       p.Result.CallID,
					Name:     p.Result.Name,
					Response: resultPayload(p.Result),
				}})
			default:
				parts = append(parts, &genai.Part{Text: p.Text})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func resultPayload(r *ToolResult) map[string]any {
	if r.Error != "" {
		return map[string]any{"error": r.Error}
	}
	var obj map[string]any
	if len(r.Output) > 0 && json.Unmarshal(r.Output, &obj) == nil {
		return obj
	}
	var v any
	if len(r.Output) > 0 && json.Unmarshal(r.Output, &v) == nil {
		return map[string]any{"result": v}
	}
	return map[string]any{}
}
