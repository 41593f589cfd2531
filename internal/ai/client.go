package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Upstream failure kinds. The API layer maps these to distinct status codes
// so callers can tell "retry later" from "the account needs credits".
var (
	ErrRateLimited        = errors.New("ai service rate limit exceeded")
	ErrQuotaExhausted     = errors.New("ai service quota exhausted")
	ErrUpstream           = errors.New("ai service request failed")
	ErrNoStructuredOutput = errors.New("model did not return structured output")
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
// Configuration is injected once at construction; nothing here reads the
// environment.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, model, embedModel string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // extraction over long RFPs is slow
		},
		logger: logger,
	}
}

// Model reports the configured completion model.
func (c *Client) Model() string { return c.model }

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type toolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Tools       []Tool        `json:"tools,omitempty"`
	ToolChoice  *toolChoice   `json:"tool_choice,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// CallTool runs a chat completion pinned to a single tool and returns that
// tool call's raw JSON arguments. Low temperature keeps repeated calls on
// the same input close to deterministic.
func (c *Client) CallTool(ctx context.Context, messages []ChatMessage, tool Tool, temperature float64) (json.RawMessage, error) {
	choice := &toolChoice{Type: "function"}
	choice.Function.Name = tool.Function.Name

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       []Tool{tool},
		ToolChoice:  choice,
		Temperature: temperature,
	}

	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Choices) == 0 {
		return nil, ErrNoStructuredOutput
	}
	for _, call := range parsed.Choices[0].Message.ToolCalls {
		if call.Function.Name == tool.Function.Name && call.Function.Arguments != "" {
			return json.RawMessage(call.Function.Arguments), nil
		}
	}

	return nil, ErrNoStructuredOutput
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// GenerateEmbedding returns the embedding vector for a single text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{Model: c.embedModel, Input: []string{text}}

	var parsed embeddingResponse
	if err := c.post(ctx, "/embeddings", reqBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embeddings response contained no vectors: %w", ErrUpstream)
	}
	return parsed.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return ErrRateLimited
		case http.StatusPaymentRequired:
			return ErrQuotaExhausted
		default:
			// Details stay server-side; callers see the generic error.
			c.logger.Error("ai upstream request failed",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
			return ErrUpstream
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
