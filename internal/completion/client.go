// Package completion is a small client for an OpenAI-compatible
// /chat/completions endpoint (DeepSeek by default).
//
// The client makes exactly one outbound call per request: no caching, no
// retry. Everything it returns on failure is a classified error type so the
// caller can decide what to do per destination.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tarminik/tg-ai-gen/pkg/logx"
)

// Config holds the connection settings plus the generation defaults applied
// when a Request leaves a field at its zero value.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// Request describes one generate call. Zero fields fall back to the client
// defaults from Config (Temperature falls back when <= 0, so an explicit
// default of 0 must be set on the Config itself).
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

type Client struct {
	cfg      Config
	endpoint string
	http     *http.Client
	log      logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	return &Client{
		cfg:      cfg,
		endpoint: endpointURL(cfg.BaseURL),
		// Per-call deadlines come from the request context, not a client-wide timeout.
		http: &http.Client{},
		log:  log,
	}
}

// Generate requests content for prompt using the client defaults. This is the
// form the dispatcher consumes.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Complete(ctx, Request{Prompt: prompt})
}

// Complete executes one chat completion call and returns the assistant
// content, whitespace-trimmed.
//
// Response handling reads the full raw body before any structured parse so
// diagnostics always have the original text:
//  1. error status -> UpstreamError with a message extracted from the body
//  2. non-JSON body -> MalformedResponseError
//  3. JSON without choices[0].message.content -> UnexpectedShapeError
//  4. otherwise -> the content string
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	req = c.withDefaults(req)

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	payload := chatRequest{
		Model:       c.cfg.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
	if req.SystemPrompt != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.Debug("completion request",
		logx.String("model", c.cfg.Model),
		logx.Int("prompt_len", len(req.Prompt)),
		logx.Duration("timeout", req.Timeout))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if terr := asTimeout(err, req.Timeout); terr != nil {
			return "", terr
		}
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	// Read the whole body up front; every branch below wants the raw text.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if terr := asTimeout(err, req.Timeout); terr != nil {
			return "", terr
		}
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &UpstreamError{Status: resp.StatusCode, Message: extractErrorMessage(raw)}
	}

	if !json.Valid(raw) {
		return "", &MalformedResponseError{Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Valid JSON, but not the document we expect (e.g. choices is a string).
		return "", &UnexpectedShapeError{Body: string(raw)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == nil {
		return "", &UnexpectedShapeError{Body: string(raw)}
	}

	c.log.Debug("completion received",
		logx.Int("status", resp.StatusCode),
		logx.Duration("dur", time.Since(start)))

	return strings.TrimSpace(*parsed.Choices[0].Message.Content), nil
}

func (c *Client) withDefaults(req Request) Request {
	if req.SystemPrompt == "" {
		req.SystemPrompt = c.cfg.SystemPrompt
	}
	if req.Temperature <= 0 {
		req.Temperature = c.cfg.Temperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if req.Timeout <= 0 {
		req.Timeout = c.cfg.Timeout
	}
	return req
}

// ---- wire types ----

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorBody covers the common OpenAI-compatible error shapes:
// {"error":{"message":...}} and {"message":...}.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// extractErrorMessage pulls a human-readable message out of an error body.
// Any decode failure falls back to the raw text, so an error message is
// produced even against nonstandard upstream formats.
func extractErrorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Error != nil && eb.Error.Message != "" {
			return eb.Error.Message
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// endpointURL normalizes the configured base URL. A base that already ends in
// a version segment (v1, v2, ...) gets /chat/completions appended directly;
// anything else gets the DeepSeek default /v1/chat/completions. Operators can
// therefore configure either a bare host or a pre-versioned base URL.
func endpointURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	last := base
	if i := strings.LastIndex(base, "/"); i >= 0 {
		last = base[i+1:]
	}
	if versionSegment.MatchString(last) {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

func asTimeout(err error, limit time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Limit: limit, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Limit: limit, Err: err}
	}
	return nil
}
