package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// Client is the completion-service client used by the rest of the backend.
type Client interface {
	// Complete performs a single chat completion, optionally advertising tools.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)

	// CompleteText is the plain system+user convenience over Complete.
	CompleteText(ctx context.Context, system string, user string) (string, error)

	// Embed returns one vector per input, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimRight(envutil.Str("OPENAI_BASE_URL", "https://api.openai.com"), "/")
	model := envutil.Str("OPENAI_MODEL", "gpt-4o")
	embedModel := envutil.Str("OPENAI_EMBED_MODEL", "text-embedding-3-small")
	timeout := envutil.Dur("OPENAI_TIMEOUT_SECONDS", 180*time.Second)
	maxRetries := envutil.Int("OPENAI_MAX_RETRIES", 4)
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

func (c *client) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	out := CompletionResult{}
	if len(req.Messages) == 0 {
		return out, fmt.Errorf("openai complete: empty messages")
	}

	body := chatCompletionsRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if len(req.Tools) > 0 {
		body.ToolChoice = req.ToolChoice
		if body.ToolChoice == "" {
			body.ToolChoice = "auto"
		}
	}

	var resp chatCompletionsResponse
	if err := c.do(ctx, "POST", "/v1/chat/completions", body, &resp); err != nil {
		return out, err
	}
	if resp.Error != nil {
		return out, fmt.Errorf("openai completion error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return out, fmt.Errorf("openai completion returned no choices")
	}

	choice := resp.Choices[0]
	out.Text = strings.TrimSpace(choice.Message.Content)
	if len(choice.Message.ToolCalls) > 0 {
		tc := choice.Message.ToolCalls[0]
		out.ToolCall = &tc
	}
	return out, nil
}

func (c *client) CompleteText(ctx context.Context, system string, user string) (string, error) {
	res, err := c.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", embeddingsRequest{
		Model: c.embedModel,
		Input: inputs,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embeddings: expected %d vectors, got %d", len(inputs), len(resp.Data))
	}
	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		status, raw, err := c.doOnce(ctx, method, path, body)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 200 && status < 300 {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("openai decode: %w", err)
			}
			return nil
		}

		lastErr = fmt.Errorf("openai http %d: %s", status, truncate(string(raw), 400))
		if status == http.StatusTooManyRequests || status >= 500 {
			c.log.Warn("openai request retryable failure", "status", status, "attempt", attempt)
			continue
		}
		return lastErr
	}
	return lastErr
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
