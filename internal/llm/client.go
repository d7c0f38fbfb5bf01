package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Default client parameters, used when no option overrides them.
const (
	// DefaultBaseURL is the OpenAI API root. Any server speaking the
	// chat-completions protocol works.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel balances speed and quality for routine analyses.
	DefaultModel = "gpt-4o-mini"

	// DefaultPremiumModel serves requests that set premium mode.
	DefaultPremiumModel = "gpt-4o"

	// DefaultMaxOutputTokens caps the completion length.
	DefaultMaxOutputTokens = 1500

	// DefaultCallTimeout bounds one attempt; each retry gets a fresh
	// timeout.
	DefaultCallTimeout = 25 * time.Second

	// DefaultMaxRetries is the total attempt count for transient
	// failures. The first call counts as attempt one.
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the bound for the first retry delay.
	DefaultBackoffBase = 500 * time.Millisecond

	// DefaultBackoffMax caps backoff growth across retries.
	DefaultBackoffMax = 10 * time.Second
)

// Call is one analysis request against the model.
type Call struct {
	// SystemPrompt sets the auditor role and output contract.
	SystemPrompt string

	// UserPrompt carries the texts under comparison.
	UserPrompt string

	// Premium selects the premium model for this call.
	Premium bool
}

// Client invokes an OpenAI-compatible chat-completions endpoint and
// returns raw JSON analysis payloads. It retries transient failures
// with exponential backoff and classifies every failure into the
// package's error taxonomy. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	model        string
	premiumModel string
	temperature  float64
	maxTokens    int

	callTimeout time.Duration
	maxRetries  int
	backoff     Backoff
	logger      *slog.Logger
}

// settings collects option values before NewClient assembles the
// client from them.
type settings struct {
	httpClient   *http.Client
	proxyAddr    string
	model        string
	premiumModel string
	temperature  float64
	maxTokens    int
	callTimeout  time.Duration
	maxRetries   int
	backoff      Backoff
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*settings)

// WithModel sets the model used for standard calls.
func WithModel(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.model = name
		}
	}
}

// WithPremiumModel sets the model used for premium calls.
func WithPremiumModel(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.premiumModel = name
		}
	}
}

// WithTemperature sets the sampling temperature. The default of zero
// keeps analyses deterministic.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = t }
}

// WithMaxOutputTokens caps the completion length. Non-positive values
// are ignored.
func WithMaxOutputTokens(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithCallTimeout bounds each individual attempt. Non-positive values
// are ignored.
func WithCallTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithMaxRetries sets the total attempt count for transient failures.
// Values below one are ignored.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 1 {
			s.maxRetries = n
		}
	}
}

// WithBackoff sets the retry delay policy.
func WithBackoff(b Backoff) Option {
	return func(s *settings) { s.backoff = b }
}

// WithSOCKSProxy routes model traffic through a SOCKS5 proxy at
// addr ("host:port"). Empty means a direct connection.
func WithSOCKSProxy(addr string) Option {
	return func(s *settings) { s.proxyAddr = addr }
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this
// to point the client at a local server; it overrides WithSOCKSProxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewClient creates a model client for the endpoint rooted at baseURL
// (without the /chat/completions suffix). The API key must be
// non-empty; it is sent as a bearer token and never logged.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	s := settings{
		model:        DefaultModel,
		premiumModel: DefaultPremiumModel,
		maxTokens:    DefaultMaxOutputTokens,
		callTimeout:  DefaultCallTimeout,
		maxRetries:   DefaultMaxRetries,
		backoff:      Backoff{Base: DefaultBackoffBase, Max: DefaultBackoffMax, Jitter: true},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	httpClient := s.httpClient
	if httpClient == nil {
		transport, err := newTransport(s.proxyAddr)
		if err != nil {
			return nil, err
		}
		// No client-level timeout: the per-attempt context carries the
		// deadline, and a client timeout would also cap the caller's
		// own context undesirably.
		httpClient = &http.Client{Transport: transport}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        s.model,
		premiumModel: s.premiumModel,
		temperature:  s.temperature,
		maxTokens:    s.maxTokens,
		callTimeout:  s.callTimeout,
		maxRetries:   s.maxRetries,
		backoff:      s.backoff,
		logger:       s.logger,
	}, nil
}

// newTransport builds the HTTP transport, routing through a SOCKS5
// proxy when an address is configured.
func newTransport(proxyAddr string) (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyAddr == "" {
		return transport, nil
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer for %s: %w", proxyAddr, err)
	}
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}
	return transport, nil
}

// chatMessage, chatRequest, and chatResponse mirror the subset of the
// chat-completions wire format the client needs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the call to the model and returns the completion
// content as validated raw JSON. Transient failures are retried up to
// the configured attempt count with exponential backoff; hard
// rejections fail immediately. After the last attempt the terminal
// error is returned — never a fabricated response.
func (c *Client) Analyze(ctx context.Context, call Call) (json.RawMessage, error) {
	modelName := c.model
	if call.Premium {
		modelName = c.premiumModel
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			delay := c.backoff.Delay(attempt - 1)
			c.logger.Debug("retrying model call",
				"attempt", attempt,
				"delay", delay,
				"model", modelName,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		content, err := c.invoke(ctx, modelName, call)
		if err == nil {
			return content, nil
		}
		lastErr = err

		// The parent context being done means our deadline, not the
		// upstream's, ended the attempt; further retries cannot run.
		if ctx.Err() != nil {
			return nil, err
		}
		if !transient(err) {
			return nil, err
		}
		c.logger.Warn("model call failed",
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"error", err,
		)
	}

	return nil, fmt.Errorf("model call failed after %d attempts: %w", c.maxRetries, lastErr)
}

// invoke performs a single chat-completions call under its own
// timeout and validates that the completion content is JSON.
func (c *Client) invoke(ctx context.Context, modelName string, call Call) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: modelName,
		Messages: []chatMessage{
			{Role: "system", Content: call.SystemPrompt},
			{Role: "user", Content: call.UserPrompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %v", ErrProtocol, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion has no choices", ErrProtocol)
	}
	content := decoded.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("%w: empty completion content", ErrProtocol)
	}
	raw := json.RawMessage(content)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: completion content is not valid JSON", ErrProtocol)
	}

	return raw, nil
}

// Ping verifies the endpoint is reachable and the credentials are
// accepted. It lists models rather than spending tokens on a
// completion.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	return nil
}
