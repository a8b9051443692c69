// Package googletranslate calls the public translate_a/single endpoint, the
// same one the web widget and most free translator libraries use.
package googletranslate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"vidlingo/internal/services/httpretry"
)

const (
	// DefaultBaseURL is the public endpoint queried with client=gtx.
	DefaultBaseURL = "https://translate.googleapis.com/translate_a/single"
	// MaxTextLength is the largest input, in characters, the endpoint accepts.
	MaxTextLength      = 5000
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) vidlingo"
)

// ErrTextTooLong is returned for inputs longer than MaxTextLength.
var ErrTextTooLong = errors.New("text exceeds translation length limit")

// Config configures the endpoint and request timeout.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client translates text through the public endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      httpretry.Policy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides retry behaviour.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient builds a client from cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		httpClient: &http.Client{Timeout: timeout},
		retry:      httpretry.Default(),
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Translate returns text rendered in target. source may be "auto".
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	result, err := c.translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Result is a translation plus the language the endpoint detected.
type Result struct {
	Text             string
	DetectedLanguage string
}

func (c *Client) translate(ctx context.Context, text, source, target string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("google translate: text required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Result{}, fmt.Errorf("google translate: %w (%d > %d characters)", ErrTextTooLong, utf8.RuneCountInString(text), MaxTextLength)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, errors.New("google translate: target language required")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "auto"
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return Result{}, fmt.Errorf("google translate: build url: %w", err)
	}
	query := endpoint.Query()
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("ie", "UTF-8")
	query.Set("oe", "UTF-8")
	query.Set("q", text)
	endpoint.RawQuery = query.Encode()

	var result Result
	err = c.retry.Do(ctx, "google translate", func(int) error {
		body, err := c.get(ctx, endpoint.String())
		if err != nil {
			return err
		}
		result, err = ParseResponse(body)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("google translate: new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google translate: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("google translate: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, httpretry.NewStatusError("google translate", resp, body)
	}
	return body, nil
}

// ParseResponse extracts the translation from the endpoint's nested array
// payload: [[["chunk", "source", ...], ...], null, "detected", ...]. Long
// inputs come back as several sentence chunks which are concatenated.
func ParseResponse(body []byte) (Result, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return Result{}, fmt.Errorf("google translate: decode response: %w", err)
	}
	if len(top) == 0 {
		return Result{}, errors.New("google translate: empty response")
	}
	var sentences []json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return Result{}, fmt.Errorf("google translate: decode sentences: %w", err)
	}
	var b strings.Builder
	for _, raw := range sentences {
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(parts[0], &chunk); err != nil {
			continue
		}
		b.WriteString(chunk)
	}
	result := Result{Text: strings.TrimSpace(b.String())}
	if result.Text == "" {
		return Result{}, errors.New("google translate: response contained no translation")
	}
	if len(top) > 2 {
		_ = json.Unmarshal(top[2], &result.DetectedLanguage)
	}
	return result, nil
}

// HealthCheck translates a short fixed string.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Translate(ctx, "hello", "en", "fr"); err != nil {
		return fmt.Errorf("google translate health: %w", err)
	}
	return nil
}
