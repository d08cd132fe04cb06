package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	ometrics "github.com/arbor-research/arbor/internal/metrics"
	"github.com/arbor-research/arbor/internal/tracing"
)

// Config holds LLM service connection settings.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	ModelTier string        `mapstructure:"model_tier"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Client calls the text-generation/structured-extraction service. Structured
// calls send a JSON-schema description of the expected output alongside the
// prompt; the service either returns a conforming value or fails.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a client with defaults applied.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	c := cfg
	if c.BaseURL == "" {
		c.BaseURL = "http://llm-service:8000"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.ModelTier == "" {
		c.ModelTier = "small"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:  c,
		http: &http.Client{Timeout: c.Timeout},
		log:  logger,
	}
}

type completionRequest struct {
	Prompt      string                 `json:"prompt"`
	Schema      map[string]interface{} `json:"schema,omitempty"`
	Model       string                 `json:"model,omitempty"`
	ModelTier   string                 `json:"model_tier,omitempty"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Output     json.RawMessage `json:"output"`
	Text       string          `json:"text"`
	ModelUsed  string          `json:"model_used"`
	TokensUsed int             `json:"tokens_used"`
}

// CompleteStructured sends prompt plus a JSON-schema object and decodes the
// conforming output into out. Kind labels the call for metrics.
func (c *Client) CompleteStructured(ctx context.Context, kind, prompt string, schema map[string]interface{}, out interface{}) error {
	resp, err := c.call(ctx, kind, "/completions/structured", completionRequest{
		Prompt:      prompt,
		Schema:      schema,
		Model:       c.cfg.Model,
		ModelTier:   c.cfg.ModelTier,
		Temperature: 0.2,
	})
	if err != nil {
		return err
	}
	if len(resp.Output) == 0 {
		return fmt.Errorf("llm service returned empty structured output")
	}
	if err := json.Unmarshal(resp.Output, out); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

// Complete sends a plain prompt and returns the generated text. Kind labels
// the call for metrics.
func (c *Client) Complete(ctx context.Context, kind, prompt string) (string, error) {
	resp, err := c.call(ctx, kind, "/completions", completionRequest{
		Prompt:      prompt,
		Model:       c.cfg.Model,
		ModelTier:   c.cfg.ModelTier,
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", fmt.Errorf("llm service returned empty completion")
	}
	return resp.Text, nil
}

func (c *Client) call(ctx context.Context, kind, path string, reqBody completionRequest) (*completionResponse, error) {
	start := time.Now()
	url := c.cfg.BaseURL + path

	ctx, span := tracing.StartHTTPSpan(ctx, http.MethodPost, url)
	defer span.End()

	buf, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectTraceparent(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		ometrics.RecordLLMMetrics(kind, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("llm service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ometrics.RecordLLMMetrics(kind, "error", time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("llm service returned %d: %s", resp.StatusCode, string(body))
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		ometrics.RecordLLMMetrics(kind, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("decode llm response: %w", err)
	}

	ometrics.RecordLLMMetrics(kind, "ok", time.Since(start).Seconds())
	c.log.Debug("LLM call completed",
		zap.String("kind", kind),
		zap.String("model", cr.ModelUsed),
		zap.Int("tokens", cr.TokensUsed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &cr, nil
}
