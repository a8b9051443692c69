package gtts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"vidlingo/internal/fileutil"
	"vidlingo/internal/services"
	"vidlingo/internal/services/httpretry"
)

const (
	// DefaultBaseURL is the text-to-speech endpoint.
	DefaultBaseURL     = "https://translate.google.com/translate_tts"
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) vidlingo"
	stage              = "synthesizing"
)

// Config configures the endpoint and request timeout.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client fetches speech audio.
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

// Synthesize speaks text in lang and writes the MP3 to destPath. destPath
// is only replaced once every chunk has been fetched.
func (c *Client) Synthesize(ctx context.Context, text, lang, destPath string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return services.Wrap(services.ErrSynthesis, stage, "validate", "language required", nil)
	}
	if strings.TrimSpace(destPath) == "" {
		return services.Wrap(services.ErrSynthesis, stage, "validate", "destination path required", nil)
	}
	chunks := Tokenize(text, MaxChunkLength)
	if len(chunks) == 0 {
		return services.Wrap(services.ErrSynthesis, stage, "validate", "no text to synthesize", nil)
	}

	err := fileutil.WriteAtomicFunc(destPath, 0o644, func(w io.Writer) error {
		for idx, chunk := range chunks {
			audio, err := c.fetchChunk(ctx, chunk, lang, idx, len(chunks))
			if err != nil {
				return fmt.Errorf("chunk %d of %d: %w", idx+1, len(chunks), err)
			}
			if _, err := w.Write(audio); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return services.Wrap(services.ErrSynthesis, stage, "synthesize", "speech synthesis failed", err)
	}
	return nil
}

// ChunkURL returns the request URL for one chunk.
func (c *Client) ChunkURL(chunk, lang string, idx, total int) (string, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	query := endpoint.Query()
	query.Set("ie", "UTF-8")
	query.Set("q", chunk)
	query.Set("tl", lang)
	query.Set("client", "tw-ob")
	query.Set("total", strconv.Itoa(total))
	query.Set("idx", strconv.Itoa(idx))
	query.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

func (c *Client) fetchChunk(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	endpoint, err := c.ChunkURL(chunk, lang, idx, total)
	if err != nil {
		return nil, err
	}
	var audio []byte
	err = c.retry.Do(ctx, "tts", func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("tts: new request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Referer", "https://translate.google.com/")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("tts: http error: %w", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return fmt.Errorf("tts: read body: %w", err)
		}
		if resp.StatusCode >= http.StatusMultipleChoices || resp.StatusCode < http.StatusOK {
			return httpretry.NewStatusError("tts", resp, body)
		}
		if len(body) == 0 {
			return &httpretry.RetryableError{Err: errors.New("tts: empty audio response")}
		}
		audio = body
		return nil
	})
	return audio, err
}
