// Package analyzer turns journal text into a structured Analysis through an
// LLM backend.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"go.uber.org/zap"

	"mindjournal/internal/config"
	"mindjournal/internal/models"
)

// ErrAnalysisUnavailable wraps every failure of an analysis call. Callers
// treat it as "no analysis" rather than as an error to surface.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Analyzer is what the journal service depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.Analysis, error)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type backend interface {
	name() string
	complete(ctx context.Context, messages []message) (string, error)
}

// Client picks a backend per call: the hosted toolkit when no API key is
// configured, OpenAI with the key as bearer credential otherwise.
type Client struct {
	cfg        config.AnalysisConfig
	apiKey     func() string
	httpClient *http.Client
	schema     *jsonschema.Schema
	log        *zap.Logger
}

func NewClient(cfg config.AnalysisConfig, apiKey func() string, log *zap.Logger) (*Client, error) {
	schema, err := jsonschema.NewCompiler().Compile([]byte(analysisSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile analysis schema: %w", err)
	}
	return &Client{
		cfg:        cfg,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		schema:     schema,
		log:        log,
	}, nil
}

func (c *Client) backend() backend {
	if key := strings.TrimSpace(c.apiKey()); key != "" {
		return &openAIBackend{url: c.cfg.OpenAIURL, model: c.cfg.Model, key: key, http: c.httpClient}
	}
	return &hostedBackend{url: c.cfg.HostedURL, http: c.httpClient}
}

func (c *Client) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	b := c.backend()
	content, err := b.complete(ctx, []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		c.log.Warn("analysis backend failed", zap.String("backend", b.name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysisUnavailable, b.name(), err)
	}
	a, err := c.parse(content)
	if err != nil {
		c.log.Warn("analysis reply rejected", zap.String("backend", b.name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysisUnavailable, b.name(), err)
	}
	return a, nil
}

func (c *Client) parse(content string) (*models.Analysis, error) {
	raw := []byte(strings.TrimSpace(content))
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("reply is not JSON: %w", err)
	}
	result := c.schema.Validate(doc)
	if !result.IsValid() {
		var msgs []string
		for field, evalErr := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("reply violates schema: %s", strings.Join(msgs, "; "))
	}
	var a models.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
